package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hospital-directory/internal/domain"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Messages returned by the auth gate. Clients match on them.
const (
	MsgNoToken       = "No token provided"
	MsgInvalidFormat = "Invalid token format"
	MsgInvalidToken  = "Invalid token"
	MsgUserNotFound  = "User not found"
	MsgAccessDenied  = "Access denied"
)

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// Role returns the caller's role, or "" for a nil principal.
func (p *Principal) Role() domain.Role {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Role
}

// IdentityLookup resolves a token subject to a stored user.
// It must return pgx.ErrNoRows when the subject does not exist.
type IdentityLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens       *TokenManager
	users        IdentityLookup
	storeTimeout time.Duration
}

// NewAuthMiddleware constructs middleware. A non-positive storeTimeout leaves
// the lookup bounded only by the request context.
func NewAuthMiddleware(tokens *TokenManager, users IdentityLookup, storeTimeout time.Duration) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, storeTimeout: storeTimeout}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized(MsgNoToken)
	}

	tokenStr, ok := bearerToken(authHeader)
	if !ok {
		return apperrors.NewUnauthorized(MsgInvalidFormat)
	}

	subjectID, err := m.tokens.Verify(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized(MsgInvalidToken)
	}

	ctx := c.UserContext()
	if m.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.storeTimeout)
		defer cancel()
	}

	user, err := m.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized(MsgUserNotFound)
		}
		return apperrors.NewUnavailable(err)
	}
	if user == nil {
		return apperrors.NewUnauthorized(MsgUserNotFound)
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// bearerToken splits "Bearer <token>" into its token part. The header must be
// exactly two space separated parts with a non-empty token.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.User != nil
}
