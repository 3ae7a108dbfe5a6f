package service

import (
	"context"
	"errors"
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

// DefaultUnsuspendReason is recorded when no explicit reason accompanies
// an unsuspension, including every automatic expiry.
const DefaultUnsuspendReason = "period expired"

// ModerationService applies account status transitions on behalf of
// administrators and the automatic expiry check.
type ModerationService struct {
	accounts      repository.AccountRepository
	audit         repository.AuditLogRepository
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// ModerationDependencies bundles repositories for the moderation service.
type ModerationDependencies struct {
	AccountRepo      repository.AccountRepository
	AuditRepo        repository.AuditLogRepository
	NotificationRepo repository.NotificationRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	return &ModerationService{
		accounts:      deps.AccountRepo,
		audit:         deps.AuditRepo,
		notifications: deps.NotificationRepo,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// Suspend places an active elderly or volunteer account under suspension
// for exactly 7, 30 or 90 days.
func (s *ModerationService) Suspend(ctx context.Context, actorID, targetID string, days int, reason string) (*domain.Account, error) {
	if !domain.ValidSuspensionDuration(days) {
		return nil, apperrors.NewValidationError("duration must be 7, 30 or 90 days", map[string]any{"duration": days})
	}
	target, err := s.loadModerationTarget(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.AccountStatusActive {
		return nil, apperrors.NewIneligible("only active accounts can be suspended")
	}

	now := time.Now()
	end := now.AddDate(0, 0, days)
	target.Status = domain.AccountStatusSuspended
	target.SuspensionReason = &reason
	target.SuspendedAt = &now
	target.SuspensionDays = &days
	target.SuspensionEnd = &end

	if err := s.accounts.Update(ctx, target); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, actorID, domain.AuditSuspendUser, target.ID, map[string]any{
		"reason":   reason,
		"duration": days,
		"end":      end,
	})
	s.publish(ctx, events.Event{
		Type:    events.EventAccountSuspended,
		ActorID: actorID,
		Payload: events.AccountStatusPayload{
			AccountID: target.ID,
			Role:      target.Role,
			Reason:    reason,
			Days:      days,
			End:       &end,
		},
	})
	return target, nil
}

// Deactivate puts an active elderly or volunteer account into the
// deactivated state. The account keeps its identity and can be reactivated.
func (s *ModerationService) Deactivate(ctx context.Context, actorID, targetID, reason string) (*domain.Account, error) {
	target, err := s.loadModerationTarget(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.AccountStatusActive {
		return nil, apperrors.NewIneligible("only active accounts can be deactivated")
	}

	now := time.Now()
	target.Status = domain.AccountStatusDeactivated
	target.DeactivationReason = &reason
	target.DeactivatedAt = &now

	if err := s.accounts.Update(ctx, target); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, actorID, domain.AuditDeactivateUser, target.ID, map[string]any{"reason": reason})
	s.publish(ctx, events.Event{
		Type:    events.EventAccountDeactivated,
		ActorID: actorID,
		Payload: events.AccountStatusPayload{
			AccountID: target.ID,
			Role:      target.Role,
			Reason:    reason,
		},
	})
	return target, nil
}

// Reactivate returns a deactivated account to active and clears the
// deactivation fields.
func (s *ModerationService) Reactivate(ctx context.Context, actorID, targetID string) (*domain.Account, error) {
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.Role.Moderatable() {
		return nil, apperrors.NewIneligible("account role is not subject to moderation")
	}
	if target.Status != domain.AccountStatusDeactivated {
		return nil, apperrors.NewIneligible("account is not deactivated")
	}

	target.Status = domain.AccountStatusActive
	target.DeactivationReason = nil
	target.DeactivatedAt = nil

	if err := s.accounts.Update(ctx, target); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, actorID, domain.AuditReactivateUser, target.ID, nil)
	s.publish(ctx, events.Event{
		Type:    events.EventAccountReactivated,
		ActorID: actorID,
		Payload: events.AccountStatusPayload{
			AccountID: target.ID,
			Role:      target.Role,
		},
	})
	return target, nil
}

// Unsuspend returns a suspended account to active and clears every
// suspension field. An empty reason records the expiry default.
func (s *ModerationService) Unsuspend(ctx context.Context, actorID, targetID, reason string) (*domain.Account, error) {
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.Role.Moderatable() {
		return nil, apperrors.NewIneligible("account role is not subject to moderation")
	}
	if target.Status != domain.AccountStatusSuspended {
		return nil, apperrors.NewIneligible("account is not suspended")
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultUnsuspendReason
	}

	target.Status = domain.AccountStatusActive
	target.SuspensionReason = nil
	target.SuspendedAt = nil
	target.SuspensionDays = nil
	target.SuspensionEnd = nil

	if err := s.accounts.Update(ctx, target); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, actorID, domain.AuditUnsuspendUser, target.ID, map[string]any{"reason": reason})
	s.publish(ctx, events.Event{
		Type:    events.EventAccountUnsuspended,
		ActorID: actorID,
		Payload: events.AccountStatusPayload{
			AccountID: target.ID,
			Role:      target.Role,
			Reason:    reason,
		},
	})
	return target, nil
}

// DeleteAccount permanently removes the target's identity, profile data and
// notification inbox. Irreversible; the audit entry is written before the
// deletion so the reason survives the account.
func (s *ModerationService) DeleteAccount(ctx context.Context, actorID, targetID, reason string) error {
	target, err := s.loadModerationTarget(ctx, actorID, targetID)
	if err != nil {
		return err
	}

	s.appendAudit(ctx, actorID, domain.AuditDeleteUser, target.ID, map[string]any{
		"reason": reason,
		"email":  target.Email,
		"role":   target.Role,
	})

	if err := s.notifications.DeleteByRecipient(ctx, target.ID); err != nil {
		s.logWarn("delete notifications", target.ID, err)
	}
	return s.accounts.Delete(ctx, target.ID)
}

// UnsuspendIfExpired applies the expiry transition for a single account if
// its suspension window has passed. Recorded against the system actor.
func (s *ModerationService) UnsuspendIfExpired(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.loadTarget(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.SuspensionExpired(time.Now()) {
		return account, nil
	}
	return s.Unsuspend(ctx, domain.SystemActor, accountID, DefaultUnsuspendReason)
}

// ExpireSuspensions sweeps all suspended accounts whose window has passed
// and unsuspends each one. Returns the number of accounts transitioned.
func (s *ModerationService) ExpireSuspensions(ctx context.Context) (int, error) {
	expired, err := s.accounts.ListExpiredSuspensions(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range expired {
		if _, err := s.Unsuspend(ctx, domain.SystemActor, expired[i].ID, DefaultUnsuspendReason); err != nil {
			s.logWarn("expire suspension", expired[i].ID, err)
			continue
		}
		count++
	}
	return count, nil
}

// Broadcast emits a system message to every account of the given role, or
// to everyone when role is nil.
func (s *ModerationService) Broadcast(ctx context.Context, actorID string, role *domain.Role, message string) error {
	if strings.TrimSpace(message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}
	target := "all"
	if role != nil {
		target = string(*role)
	}
	s.appendAudit(ctx, actorID, domain.AuditBroadcast, target, map[string]any{"message": message})
	s.publish(ctx, events.Event{
		Type:    events.EventSystemBroadcast,
		ActorID: actorID,
		Payload: events.BroadcastPayload{Role: role, Message: message},
	})
	return nil
}

// AuditTrail returns the global moderation trail, newest first.
func (s *ModerationService) AuditTrail(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	return s.audit.List(ctx, limit, offset)
}

// AuditTrailFor returns the trail entries targeting one account or report.
func (s *ModerationService) AuditTrailFor(ctx context.Context, targetID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	return s.audit.ListByTarget(ctx, targetID, limit, offset)
}

// loadModerationTarget loads the target and enforces the guards shared by
// suspend, deactivate and delete: admins are never targets, caregivers are
// always active, and an admin cannot act on their own account. The self
// check runs before any persistence write.
func (s *ModerationService) loadModerationTarget(ctx context.Context, actorID, targetID string) (*domain.Account, error) {
	if actorID == targetID {
		return nil, apperrors.NewIneligible("cannot moderate your own account")
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, apperrors.NewIneligible("admin accounts cannot be moderated")
	}
	if !target.Role.Moderatable() {
		return nil, apperrors.NewIneligible("account role is not subject to moderation")
	}
	return target, nil
}

func (s *ModerationService) loadTarget(ctx context.Context, targetID string) (*domain.Account, error) {
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"id": targetID})
		}
		return nil, err
	}
	return target, nil
}

// appendAudit writes one immutable trail entry. Failures are logged and
// swallowed; the status change has already been persisted.
func (s *ModerationService) appendAudit(ctx context.Context, actorID string, action domain.AuditAction, targetID string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	entry := &domain.AuditLogEntry{
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Metadata: metadata,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logWarn("audit append", targetID, err)
	}
}

func (s *ModerationService) publish(ctx context.Context, event events.Event) {
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

func (s *ModerationService) logWarn(op, id string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(op+" failed", zap.String("account_id", id), zap.Error(err))
}
