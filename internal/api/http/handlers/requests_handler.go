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

// RequestsHandler manages help request endpoints.
type RequestsHandler struct {
	requests *service.HelpRequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.HelpRequestService) *RequestsHandler {
	return &RequestsHandler{requests: requestService}
}

// Create POST /requests. Elderly only.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.CreateHelpRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.requests.Create(c.Context(), principal.Account.ID, service.HelpRequestCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, dto.FromHelpRequest(request))
}

// ListOpen GET /requests. Volunteers browse open tasks.
func (h *RequestsHandler) ListOpen(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	requests, err := h.requests.ListOpen(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, requestResponses(requests))
}

// Mine GET /requests/mine.
func (h *RequestsHandler) Mine(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	limit, offset := pagination(c)
	requests, err := h.requests.ListMine(c.Context(), principal.Account, limit, offset)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, requestResponses(requests))
}

// Accept POST /requests/:requestId/accept. Volunteer only.
func (h *RequestsHandler) Accept(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	request, err := h.requests.Accept(c.Context(), principal.Account.ID, c.Params("requestId"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromHelpRequest(request))
}

// Complete POST /requests/:requestId/complete. Assigned volunteer only.
func (h *RequestsHandler) Complete(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	request, err := h.requests.Complete(c.Context(), principal.Account.ID, c.Params("requestId"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromHelpRequest(request))
}

// Cancel POST /requests/:requestId/cancel. Author only.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	request, err := h.requests.Cancel(c.Context(), principal.Account.ID, c.Params("requestId"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromHelpRequest(request))
}

func requestResponses(requests []domain.HelpRequest) []dto.HelpRequestResponse {
	items := make([]dto.HelpRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.FromHelpRequest(&requests[i]))
	}
	return items
}

// mustPrincipal returns the authenticated principal; routes using it sit
// behind the auth middleware, which guarantees presence.
func mustPrincipal(c *fiber.Ctx) *auth.Principal {
	principal, _ := auth.PrincipalFromContext(c)
	return principal
}
