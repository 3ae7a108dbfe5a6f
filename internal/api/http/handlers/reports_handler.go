package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/dto"
	"github.com/carelink/care-service/internal/service"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// ReportsHandler manages user-facing report endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// Create POST /reports.
func (h *ReportsHandler) Create(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ReportedID == "" {
		return apperrors.NewValidationError("reported_id required", nil)
	}
	report, err := h.reports.CreateReport(c.Context(), principal.Account.ID, service.ReportCreateInput{
		ReportedID:    req.ReportedID,
		HelpRequestID: req.HelpRequestID,
		Reason:        req.Reason,
		Description:   req.Description,
		EvidenceKeys:  req.EvidenceKeys,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, dto.FromReport(report))
}

// Mine GET /reports/mine.
func (h *ReportsHandler) Mine(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	limit, offset := pagination(c)
	reports, err := h.reports.ListByReporter(c.Context(), principal.Account.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.FromReport(&reports[i]))
	}
	return ok(c, http.StatusOK, items)
}
