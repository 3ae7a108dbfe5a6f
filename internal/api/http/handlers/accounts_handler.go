package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/dto"
	"github.com/carelink/care-service/internal/auth"
	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/service"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// AccountsHandler exposes registration, login and the profile endpoint.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accountService}
}

// Register handles POST /auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError("role must be ELDERLY, VOLUNTEER or CAREGIVER", map[string]any{"role": req.Role})
	}

	account, token, exp, err := h.accounts.Register(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}

	return ok(c, http.StatusCreated, fiber.Map{
		"account": dto.FromAccount(account),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	account, token, exp, err := h.accounts.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, fiber.Map{
		"account": dto.FromAccount(account),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Me handles GET /auth/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return ok(c, http.StatusOK, dto.FromAccount(principal.Account))
}
