package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
	"github.com/carelink/care-service/internal/realtime"
	"github.com/carelink/care-service/internal/repository"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// NotificationService turns domain events into persisted inbox entries and
// best-effort realtime pushes. Delivery is fire-and-forget: failures are
// logged and never propagate to the operation that emitted the event.
type NotificationService struct {
	notifications repository.NotificationRepository
	accounts      repository.AccountRepository
	links         repository.CareLinkRepository
	dispatcher    events.Dispatcher
	pusher        realtime.Pusher
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the fan-out service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	AccountRepo      repository.AccountRepository
	LinkRepo         repository.CareLinkRepository
	Dispatcher       events.Dispatcher
	Pusher           realtime.Pusher
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		accounts:      deps.AccountRepo,
		links:         deps.LinkRepo,
		dispatcher:    deps.Dispatcher,
		pusher:        deps.Pusher,
		logger:        deps.Logger,
	}
}

// RegisterHandlers subscribes to every event type that produces
// notifications.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountSuspended, n.handleAccountStatus)
	n.dispatcher.Subscribe(events.EventAccountUnsuspended, n.handleAccountStatus)
	n.dispatcher.Subscribe(events.EventAccountDeactivated, n.handleAccountStatus)
	n.dispatcher.Subscribe(events.EventAccountReactivated, n.handleAccountStatus)
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleReportStatus)
	n.dispatcher.Subscribe(events.EventReviewReceived, n.handleReview)
	n.dispatcher.Subscribe(events.EventReviewRemoved, n.handleReview)
	n.dispatcher.Subscribe(events.EventRequestAccepted, n.handleRequest)
	n.dispatcher.Subscribe(events.EventRequestCompleted, n.handleRequest)
	n.dispatcher.Subscribe(events.EventRequestCancelled, n.handleRequest)
	n.dispatcher.Subscribe(events.EventCareLinkCreated, n.handleCareLink)
	n.dispatcher.Subscribe(events.EventCareLinkRemoved, n.handleCareLink)
	n.dispatcher.Subscribe(events.EventSystemBroadcast, n.handleBroadcast)
}

// ListInbox returns a recipient's notifications.
func (n *NotificationService) ListInbox(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	return n.notifications.ListByRecipient(ctx, recipientID, unreadOnly, limit, offset)
}

// MarkRead marks one notification read for its recipient.
func (n *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, recipientID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"id": notificationID})
		}
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification read for the recipient.
func (n *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return n.notifications.MarkAllRead(ctx, recipientID)
}

func (n *NotificationService) handleAccountStatus(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountStatusPayload)
	if !ok {
		return nil
	}
	message := accountStatusMessage(event.Type, payload)
	n.deliver(ctx, payload.AccountID, event, message)
	return nil
}

func (n *NotificationService) handleReportStatus(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportStatusPayload)
	if !ok {
		return nil
	}
	role := n.roleOf(ctx, payload.ReporterID)
	message := reportStatusMessage(payload, role)
	n.deliver(ctx, payload.ReporterID, event, message)
	return nil
}

func (n *NotificationService) handleReview(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReviewPayload)
	if !ok {
		return nil
	}
	switch event.Type {
	case events.EventReviewReceived:
		n.deliver(ctx, payload.RecipientID, event,
			fmt.Sprintf("You received a new %d-star review.", payload.Rating))
	case events.EventReviewRemoved:
		n.deliver(ctx, payload.AuthorID, event,
			"One of your reviews was removed by a moderator.")
	}
	return nil
}

func (n *NotificationService) handleRequest(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestPayload)
	if !ok {
		return nil
	}

	var elderlyMsg, caregiverMsg string
	switch event.Type {
	case events.EventRequestAccepted:
		elderlyMsg = fmt.Sprintf("A volunteer accepted your request %q.", payload.Title)
		caregiverMsg = fmt.Sprintf("A volunteer accepted the request %q for a person you care for.", payload.Title)
	case events.EventRequestCompleted:
		elderlyMsg = fmt.Sprintf("Your request %q was completed. You can now leave a review.", payload.Title)
		caregiverMsg = fmt.Sprintf("The request %q for a person you care for was completed.", payload.Title)
	case events.EventRequestCancelled:
		caregiverMsg = fmt.Sprintf("The request %q for a person you care for was cancelled.", payload.Title)
	}

	if elderlyMsg != "" {
		n.deliver(ctx, payload.ElderlyID, event, elderlyMsg)
	}
	if caregiverMsg != "" {
		n.fanOutToCaregivers(ctx, payload.ElderlyID, event, caregiverMsg)
	}
	return nil
}

func (n *NotificationService) handleCareLink(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CareLinkPayload)
	if !ok {
		return nil
	}
	switch event.Type {
	case events.EventCareLinkCreated:
		n.deliver(ctx, payload.ElderlyID, event, "A caregiver is now linked to your account.")
		n.deliver(ctx, payload.CaregiverID, event, "You are now linked to an elderly account.")
	case events.EventCareLinkRemoved:
		n.deliver(ctx, payload.ElderlyID, event, "A caregiver link was removed from your account.")
	}
	return nil
}

func (n *NotificationService) handleBroadcast(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BroadcastPayload)
	if !ok {
		return nil
	}

	var recipients []domain.Account
	var err error
	if payload.Role != nil {
		recipients, err = n.accounts.ListByRole(ctx, *payload.Role)
	} else {
		recipients, err = n.accounts.ListAll(ctx)
	}
	if err != nil {
		n.logger.Warn("broadcast recipient lookup failed", zap.Error(err))
		return nil
	}
	for i := range recipients {
		n.deliver(ctx, recipients[i].ID, event, payload.Message)
	}
	return nil
}

// fanOutToCaregivers sends the same message to every caregiver linked to
// the elderly account.
func (n *NotificationService) fanOutToCaregivers(ctx context.Context, elderlyID string, event events.Event, message string) {
	links, err := n.links.ListCaregivers(ctx, elderlyID)
	if err != nil {
		n.logger.Warn("caregiver fan-out lookup failed", zap.String("elderly_id", elderlyID), zap.Error(err))
		return
	}
	for _, link := range links {
		n.deliver(ctx, link.CaregiverID, event, message)
	}
}

// deliver persists the inbox row, then attempts the realtime push. Either
// step may fail without affecting the other or the caller.
func (n *NotificationService) deliver(ctx context.Context, recipientID string, event events.Event, message string) {
	notification := &domain.Notification{
		RecipientID: recipientID,
		EventType:   string(event.Type),
		Message:     message,
		Metadata: map[string]any{
			"event_id": event.ID,
			"actor_id": event.ActorID,
		},
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("notification persist failed",
			zap.String("recipient", recipientID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	if n.pusher != nil {
		if err := n.pusher.Emit(ctx, recipientID, notification); err != nil {
			n.logger.Debug("realtime push failed",
				zap.String("recipient", recipientID),
				zap.Error(err))
		}
	}
}

func (n *NotificationService) roleOf(ctx context.Context, accountID string) domain.Role {
	account, err := n.accounts.GetByID(ctx, accountID)
	if err != nil {
		return ""
	}
	return account.Role
}

func accountStatusMessage(eventType events.EventType, payload events.AccountStatusPayload) string {
	audience := "Your"
	if payload.Role == domain.RoleVolunteer {
		audience = "Your volunteer"
	} else if payload.Role == domain.RoleElderly {
		audience = "Your CareLink"
	}

	switch eventType {
	case events.EventAccountSuspended:
		msg := fmt.Sprintf("%s account has been suspended for %d days.", audience, payload.Days)
		if payload.Reason != "" {
			msg += " Reason: " + payload.Reason
		}
		return msg
	case events.EventAccountUnsuspended:
		return fmt.Sprintf("%s account suspension has been lifted (%s).", audience, payload.Reason)
	case events.EventAccountDeactivated:
		msg := fmt.Sprintf("%s account has been deactivated.", audience)
		if payload.Reason != "" {
			msg += " Reason: " + payload.Reason
		}
		return msg
	case events.EventAccountReactivated:
		return fmt.Sprintf("%s account has been reactivated. Welcome back.", audience)
	}
	return ""
}

func reportStatusMessage(payload events.ReportStatusPayload, role domain.Role) string {
	prefix := "Your report"
	if role == domain.RoleVolunteer {
		prefix = "The report you filed"
	}
	switch payload.ToStatus {
	case domain.ReportStatusInProgress:
		return prefix + " is now being reviewed by our team."
	case domain.ReportStatusResolved:
		msg := prefix + " has been resolved."
		if payload.Note != "" {
			msg += " " + payload.Note
		}
		return msg
	case domain.ReportStatusRejected:
		msg := prefix + " was reviewed and closed without action."
		if payload.Note != "" {
			msg += " " + payload.Note
		}
		return msg
	}
	return prefix + " status changed."
}
