package events

import (
	"time"

	"github.com/carelink/care-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountSuspended    EventType = "account_suspended"
	EventAccountUnsuspended  EventType = "account_unsuspended"
	EventAccountDeactivated  EventType = "account_deactivated"
	EventAccountReactivated  EventType = "account_reactivated"
	EventReportStatusChanged EventType = "report_status_changed"
	EventReviewReceived      EventType = "review_received"
	EventReviewRemoved       EventType = "review_removed"
	EventRequestAccepted     EventType = "request_accepted"
	EventRequestCompleted    EventType = "request_completed"
	EventRequestCancelled    EventType = "request_cancelled"
	EventCareLinkCreated     EventType = "care_link_created"
	EventCareLinkRemoved     EventType = "care_link_removed"
	EventSystemBroadcast     EventType = "system_broadcast"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountStatusPayload accompanies account lifecycle events.
type AccountStatusPayload struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
	Reason    string      `json:"reason,omitempty"`
	Days      int         `json:"days,omitempty"`
	End       *time.Time  `json:"end,omitempty"`
}

// ReportStatusPayload accompanies report transitions.
type ReportStatusPayload struct {
	ReportID   string              `json:"report_id"`
	ReporterID string              `json:"reporter_id"`
	FromStatus domain.ReportStatus `json:"from_status"`
	ToStatus   domain.ReportStatus `json:"to_status"`
	Note       string              `json:"note,omitempty"`
}

// ReviewPayload accompanies review events.
type ReviewPayload struct {
	ReviewID    string `json:"review_id"`
	AuthorID    string `json:"author_id"`
	RecipientID string `json:"recipient_id"`
	Rating      int    `json:"rating"`
	Reason      string `json:"reason,omitempty"`
}

// RequestPayload accompanies help-request lifecycle events.
type RequestPayload struct {
	RequestID   string  `json:"request_id"`
	ElderlyID   string  `json:"elderly_id"`
	VolunteerID *string `json:"volunteer_id,omitempty"`
	Title       string  `json:"title"`
}

// CareLinkPayload accompanies caregiver link events.
type CareLinkPayload struct {
	CaregiverID string `json:"caregiver_id"`
	ElderlyID   string `json:"elderly_id"`
}

// BroadcastPayload accompanies admin broadcasts.
type BroadcastPayload struct {
	Role    *domain.Role `json:"role,omitempty"`
	Message string       `json:"message"`
}
