package dto

import (
	"time"

	"github.com/carelink/care-service/internal/domain"
)

// CreateHelpRequestRequest payload for a new task.
type CreateHelpRequestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
}

// HelpRequestResponse is the public shape of a help request.
type HelpRequestResponse struct {
	ID          string                   `json:"id"`
	ElderlyID   string                   `json:"elderly_id"`
	VolunteerID *string                  `json:"volunteer_id,omitempty"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category,omitempty"`
	Location    string                   `json:"location,omitempty"`
	Status      domain.HelpRequestStatus `json:"status"`
	Reviewed    bool                     `json:"reviewed"`
	AcceptedAt  *time.Time               `json:"accepted_at,omitempty"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// RedeemPinRequest payload for POST /care/link.
type RedeemPinRequest struct {
	Pin string `json:"pin"`
}

// FromHelpRequest maps a domain help request.
func FromHelpRequest(request *domain.HelpRequest) HelpRequestResponse {
	return HelpRequestResponse{
		ID:          request.ID,
		ElderlyID:   request.ElderlyID,
		VolunteerID: request.VolunteerID,
		Title:       request.Title,
		Description: request.Description,
		Category:    request.Category,
		Location:    request.Location,
		Status:      request.Status,
		Reviewed:    request.Reviewed,
		AcceptedAt:  request.AcceptedAt,
		CompletedAt: request.CompletedAt,
		CreatedAt:   request.CreatedAt,
	}
}

// FromNotification maps a domain notification.
func FromNotification(notification *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		EventType: notification.EventType,
		Message:   notification.Message,
		Metadata:  notification.Metadata,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}
