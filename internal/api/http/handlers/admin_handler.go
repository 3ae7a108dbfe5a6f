package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/dto"
	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/repository"
	"github.com/carelink/care-service/internal/service"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// AdminHandler groups every moderation endpoint behind the admin role.
type AdminHandler struct {
	accounts   *service.AccountService
	moderation *service.ModerationService
	reports    *service.ReportService
	reviews    *service.ReviewService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService, moderation *service.ModerationService, reports *service.ReportService, reviews *service.ReviewService) *AdminHandler {
	return &AdminHandler{
		accounts:   accounts,
		moderation: moderation,
		reports:    reports,
		reviews:    reviews,
	}
}

// ListUsers GET /admin/users?role=&status=&search=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.AccountFilter{Limit: limit, Offset: offset}
	if raw := c.Query("role"); raw != "" {
		role, err := domain.ParseRole(strings.ToUpper(raw))
		if err != nil {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": raw})
		}
		filter.Roles = []domain.Role{role}
	}
	if raw := c.Query("status"); raw != "" {
		filter.Statuses = []domain.AccountStatus{domain.AccountStatus(strings.ToUpper(raw))}
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	accounts, err := h.accounts.ListAccounts(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.FromAccount(&accounts[i]))
	}
	return ok(c, http.StatusOK, items)
}

// Suspend POST /admin/users/:userId/suspend.
func (h *AdminHandler) Suspend(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.SuspendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.moderation.Suspend(c.Context(), principal.Account.ID, c.Params("userId"), req.Duration, req.Reason)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromAccount(account))
}

// Unsuspend POST /admin/users/:userId/unsuspend.
func (h *AdminHandler) Unsuspend(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.moderation.Unsuspend(c.Context(), principal.Account.ID, c.Params("userId"), req.Reason)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromAccount(account))
}

// Deactivate POST /admin/users/:userId/deactivate.
func (h *AdminHandler) Deactivate(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.moderation.Deactivate(c.Context(), principal.Account.ID, c.Params("userId"), req.Reason)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromAccount(account))
}

// Reactivate POST /admin/users/:userId/reactivate.
func (h *AdminHandler) Reactivate(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	account, err := h.moderation.Reactivate(c.Context(), principal.Account.ID, c.Params("userId"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromAccount(account))
}

// DeleteUser DELETE /admin/users/:userId. Permanent.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.moderation.DeleteAccount(c.Context(), principal.Account.ID, c.Params("userId"), req.Reason); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, "account deleted")
}

// ExpireSuspensions POST /admin/maintenance/expire-suspensions.
func (h *AdminHandler) ExpireSuspensions(c *fiber.Ctx) error {
	count, err := h.moderation.ExpireSuspensions(c.Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"expired": count})
}

// ListReports GET /admin/reports?status=&reported_id=.
func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.ReportFilter{Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		filter.Statuses = []domain.ReportStatus{domain.ReportStatus(strings.ToUpper(raw))}
	}
	if reported := c.Query("reported_id"); reported != "" {
		filter.ReportedID = &reported
	}

	reports, err := h.reports.ListForAdmin(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.FromReport(&reports[i]))
	}
	return ok(c, http.StatusOK, items)
}

// ReportHistory GET /admin/reports/:reportId/history.
func (h *AdminHandler) ReportHistory(c *fiber.Ctx) error {
	entries, err := h.reports.History(c.Context(), c.Params("reportId"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromReportHistory(entries))
}

// StartReview POST /admin/reports/:reportId/review.
func (h *AdminHandler) StartReview(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	report, err := h.reports.BeginReview(c.Context(), principal.Account.ID, c.Params("reportId"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromReport(report))
}

// ResolveReport POST /admin/reports/:reportId/resolve.
func (h *AdminHandler) ResolveReport(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.ResolveReportRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.ReportResolveInput{
		Note:     req.Note,
		Duration: req.Duration,
		Reason:   req.Reason,
	}
	if req.Action != "" {
		action := domain.DisciplinaryAction(strings.ToLower(req.Action))
		input.Action = &action
	}

	report, err := h.reports.Resolve(c.Context(), principal.Account.ID, c.Params("reportId"), input)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromReport(report))
}

// RejectReport POST /admin/reports/:reportId/reject.
func (h *AdminHandler) RejectReport(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.reports.Reject(c.Context(), principal.Account.ID, c.Params("reportId"), req.Reason)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromReport(report))
}

// DeleteReview DELETE /admin/reviews/:reviewId.
func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.reviews.AdminDelete(c.Context(), principal.Account.ID, c.Params("reviewId"), req.Reason); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, "review deleted")
}

// AuditLog GET /admin/audit-log?target_id=.
func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	var entries []domain.AuditLogEntry
	var err error
	if target := c.Query("target_id"); target != "" {
		entries, err = h.moderation.AuditTrailFor(c.Context(), target, limit, offset)
	} else {
		entries, err = h.moderation.AuditTrail(c.Context(), limit, offset)
	}
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromAuditEntry(&entries[i]))
	}
	return ok(c, http.StatusOK, items)
}

// Broadcast POST /admin/broadcast.
func (h *AdminHandler) Broadcast(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var role *domain.Role
	if req.Role != "" && !strings.EqualFold(req.Role, "all") {
		parsed, err := domain.ParseRole(strings.ToUpper(req.Role))
		if err != nil {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
		}
		role = &parsed
	}

	if err := h.moderation.Broadcast(c.Context(), principal.Account.ID, role, req.Message); err != nil {
		return err
	}
	return okMessage(c, http.StatusAccepted, "broadcast queued")
}
