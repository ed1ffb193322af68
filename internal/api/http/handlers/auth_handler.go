package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-request-service/internal/api/dto"
	"github.com/spec-kit/travel-request-service/internal/service"
	apperrors "github.com/spec-kit/travel-request-service/pkg/util"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	message, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Token: result.Token,
		Name:  result.Name,
		Email: result.Email,
		Role:  result.Role,
	})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	message, err := h.auth.ForgotPassword(c.Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("email, code, newPassword required", nil)
	}

	message, err := h.auth.ResetPassword(c.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

// ListUsers handles GET /api/auth/users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.Context())
	if err != nil {
		return err
	}
	profiles := make([]dto.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, dto.UserProfile{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		})
	}
	return c.JSON(profiles)
}
