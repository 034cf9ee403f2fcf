package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hospital-directory/internal/api/dto"
	"github.com/spec-kit/hospital-directory/internal/auth"
	"github.com/spec-kit/hospital-directory/internal/service"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth     *service.AuthService
	validate *dto.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, validate *dto.Validator) *UsersHandler {
	return &UsersHandler{auth: authService, validate: validate}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	req.Normalize()
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		Message: "User registered successfully",
		Token:   result.Token.Value,
		User:    dto.NewUserSummary(result.User),
	})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{
		Message: "Login successful",
		Token:   result.Token.Value,
		User:    dto.NewUserSummary(result.User),
	})
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotFound(auth.MsgUserNotFound)
	}
	return c.JSON(dto.MeResponse{User: dto.NewUserSummary(principal.User)})
}
