package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
	"github.com/carelink/care-service/internal/repository"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// ReportService runs the complaint review workflow:
// pending -> in-progress -> resolved | rejected.
type ReportService struct {
	reports    repository.ReportRepository
	history    repository.ReportHistoryRepository
	accounts   repository.AccountRepository
	moderation *ModerationService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	HistoryRepo repository.ReportHistoryRepository
	AccountRepo repository.AccountRepository
	Moderation  *ModerationService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ReportCreateInput describes a new complaint.
type ReportCreateInput struct {
	ReportedID    string
	HelpRequestID *string
	Reason        string
	Description   string
	EvidenceKeys  []string
}

// ReportResolveInput carries the optional disciplinary action applied to
// the reported account before the report is closed.
type ReportResolveInput struct {
	Note     string
	Action   *domain.DisciplinaryAction
	Duration int
	Reason   string
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		history:    deps.HistoryRepo,
		accounts:   deps.AccountRepo,
		moderation: deps.Moderation,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateReport files a complaint against another account.
func (s *ReportService) CreateReport(ctx context.Context, reporterID string, input ReportCreateInput) (*domain.Report, error) {
	if strings.TrimSpace(input.Reason) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("reason and description required", nil)
	}
	if reporterID == input.ReportedID {
		return nil, apperrors.NewValidationError("cannot report yourself", nil)
	}
	if _, err := s.accounts.GetByID(ctx, input.ReportedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"id": input.ReportedID})
		}
		return nil, err
	}

	report := &domain.Report{
		ReporterID:    reporterID,
		ReportedID:    input.ReportedID,
		HelpRequestID: input.HelpRequestID,
		Reason:        strings.TrimSpace(input.Reason),
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.ReportStatusPending,
		EvidenceKeys:  input.EvidenceKeys,
	}
	if report.EvidenceKeys == nil {
		report.EvidenceKeys = []string{}
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListByReporter returns the caller's own reports.
func (s *ReportService) ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Report, error) {
	return s.reports.ListByReporter(ctx, reporterID, limit, offset)
}

// ListForAdmin returns reports matching the filter.
func (s *ReportService) ListForAdmin(ctx context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	return s.reports.ListWithFilter(ctx, filter)
}

// History returns the append-only transition trail for a report.
func (s *ReportService) History(ctx context.Context, reportID string) ([]domain.ReportStatusChange, error) {
	return s.history.ListByReport(ctx, reportID)
}

// BeginReview moves a pending report to in-progress. A report already in
// progress yields a conflict; terminal reports are not re-openable.
func (s *ReportService) BeginReview(ctx context.Context, adminID, reportID string) (*domain.Report, error) {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	switch report.Status {
	case domain.ReportStatusInProgress:
		return nil, apperrors.NewConflict("report is already under review", map[string]any{"report_id": report.ID})
	case domain.ReportStatusResolved, domain.ReportStatusRejected:
		return nil, apperrors.NewIneligible("report has already been closed")
	}

	return s.transition(ctx, report, adminID, domain.ReportStatusInProgress, "review started", domain.AuditStartReportReview)
}

// Resolve closes an in-progress report, optionally applying a disciplinary
// action to the reported account first. The resolution note records what
// was done.
func (s *ReportService) Resolve(ctx context.Context, adminID, reportID string, input ReportResolveInput) (*domain.Report, error) {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportStatusInProgress {
		return nil, apperrors.NewIneligible("report is not under review")
	}

	note := strings.TrimSpace(input.Note)
	if input.Action != nil {
		switch *input.Action {
		case domain.DisciplinarySuspend:
			if !domain.ValidSuspensionDuration(input.Duration) {
				return nil, apperrors.NewValidationError("duration must be 7, 30 or 90 days", map[string]any{"duration": input.Duration})
			}
			if _, err := s.moderation.Suspend(ctx, adminID, report.ReportedID, input.Duration, input.Reason); err != nil {
				return nil, err
			}
			note = appendNote(note, fmt.Sprintf("reported user suspended for %d days", input.Duration))
		case domain.DisciplinaryDeactivate:
			if _, err := s.moderation.Deactivate(ctx, adminID, report.ReportedID, input.Reason); err != nil {
				return nil, err
			}
			note = appendNote(note, "reported user deactivated")
		default:
			return nil, apperrors.NewValidationError("action must be suspend or deactivate", map[string]any{"action": *input.Action})
		}
	}
	if note == "" {
		note = "resolved"
	}

	return s.transition(ctx, report, adminID, domain.ReportStatusResolved, note, domain.AuditResolveReport)
}

// Reject closes an in-progress report without any side action.
func (s *ReportService) Reject(ctx context.Context, adminID, reportID, reason string) (*domain.Report, error) {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportStatusInProgress {
		return nil, apperrors.NewIneligible("report is not under review")
	}
	note := strings.TrimSpace(reason)
	if note == "" {
		note = "rejected"
	}
	return s.transition(ctx, report, adminID, domain.ReportStatusRejected, note, domain.AuditRejectReport)
}

func (s *ReportService) transition(ctx context.Context, report *domain.Report, actorID string, to domain.ReportStatus, note string, action domain.AuditAction) (*domain.Report, error) {
	from := report.Status
	report.Status = to
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, err
	}

	change := &domain.ReportStatusChange{
		ReportID:   report.ID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Note:       note,
	}
	if err := s.history.Create(ctx, change); err != nil {
		s.logger.Warn("report history append failed", zap.String("report_id", report.ID), zap.Error(err))
	}

	s.moderation.appendAudit(ctx, actorID, action, report.ID, map[string]any{
		"from": from,
		"to":   to,
		"note": note,
	})
	s.publish(ctx, events.Event{
		Type:    events.EventReportStatusChanged,
		ActorID: actorID,
		Payload: events.ReportStatusPayload{
			ReportID:   report.ID,
			ReporterID: report.ReporterID,
			FromStatus: from,
			ToStatus:   to,
			Note:       note,
		},
	})
	return report, nil
}

func (s *ReportService) loadReport(ctx context.Context, reportID string) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": reportID})
		}
		return nil, err
	}
	return report, nil
}

func (s *ReportService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func appendNote(note, addition string) string {
	if note == "" {
		return addition
	}
	return note + "; " + addition
}
