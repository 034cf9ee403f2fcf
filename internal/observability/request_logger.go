package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

// UnmatchedRoute is the metrics bucket for requests no route handled.
const UnmatchedRoute = "unmatched"

// RouteKey returns the pattern of the route that handled c, such as
// "/api/hospitals/:id", or UnmatchedRoute. Raw paths are never used as metric
// keys so client supplied ids and URLs cannot grow the key space.
func RouteKey(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return UnmatchedRoute
}

// RequestLogger logs one line per request and records request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.ToDomainError(err).HTTPStatus
		}

		metrics.RecordRequest(RouteKey(c), c.Method(), status, latency)

		level := zapcore.InfoLevel
		if status >= fiber.StatusInternalServerError {
			level = zapcore.ErrorLevel
		} else if status >= fiber.StatusBadRequest {
			level = zapcore.WarnLevel
		}
		if ce := logger.Check(level, "http request"); ce != nil {
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", latency),
				zap.String("ip", c.IP()),
			}
			if id, ok := c.Locals("requestid").(string); ok && id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			ce.Write(fields...)
		}
		return err
	}
}
