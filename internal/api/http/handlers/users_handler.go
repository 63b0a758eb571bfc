package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// UsersHandler exposes registration, sign-in and profile endpoints.
type UsersHandler struct {
	auth     *service.AuthService
	profiles *service.ProfileService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, profileService *service.ProfileService) *UsersHandler {
	return &UsersHandler{auth: authService, profiles: profileService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(result)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Federated handles POST /auth/federated.
func (h *UsersHandler) Federated(c *fiber.Ctx) error {
	var req dto.FederatedLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.LoginFederated(c.UserContext(), req.Provider, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Logout handles POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	account, err := h.auth.Me(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponse(account.Principal())})
}

// RegisterProfile handles POST /users.
func (h *UsersHandler) RegisterProfile(c *fiber.Ctx) error {
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.profiles.Register(c.UserContext(), req.Domain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.Meta.ExpiresAt,
		Principal: dto.NewPrincipalResponse(result.Account.Principal()),
	}
}
