package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/dto"
	"github.com/carelink/care-service/internal/service"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// CareHandler manages caregiver-elderly linking.
type CareHandler struct {
	caregivers *service.CaregiverService
}

// NewCareHandler constructs handler.
func NewCareHandler(caregiverService *service.CaregiverService) *CareHandler {
	return &CareHandler{caregivers: caregiverService}
}

// IssuePin POST /care/pin. Elderly only.
func (h *CareHandler) IssuePin(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	pin, expiresAt, err := h.caregivers.IssuePin(c.Context(), principal.Account.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, fiber.Map{
		"pin":        pin,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// RedeemPin POST /care/link. Caregiver only.
func (h *CareHandler) RedeemPin(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.RedeemPinRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Pin == "" {
		return apperrors.NewValidationError("pin required", nil)
	}
	link, err := h.caregivers.RedeemPin(c.Context(), principal.Account.ID, req.Pin)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, fiber.Map{
		"caregiver_id": link.CaregiverID,
		"elderly_id":   link.ElderlyID,
	})
}

// ListElderly GET /care/elderly. Caregiver only.
func (h *CareHandler) ListElderly(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	accounts, err := h.caregivers.LinkedElderly(c.Context(), principal.Account.ID)
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.FromAccount(&accounts[i]))
	}
	return ok(c, http.StatusOK, items)
}

// Unlink DELETE /care/link/:elderlyId. Caregiver only.
func (h *CareHandler) Unlink(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	elderlyID := c.Params("elderlyId")
	if err := h.caregivers.Unlink(c.Context(), principal.Account.ID, elderlyID); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, "link removed")
}
