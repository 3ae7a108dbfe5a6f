package domain

import "time"

// HelpRequestStatus enumerates the request lifecycle.
type HelpRequestStatus string

const (
	HelpRequestStatusOpen      HelpRequestStatus = "OPEN"
	HelpRequestStatusAccepted  HelpRequestStatus = "ACCEPTED"
	HelpRequestStatusCompleted HelpRequestStatus = "COMPLETED"
	HelpRequestStatusCancelled HelpRequestStatus = "CANCELLED"
)

// HelpRequest is a task posted by an elderly user for volunteers.
type HelpRequest struct {
	ID          string
	ElderlyID   string
	VolunteerID *string
	Title       string
	Description string
	Category    string
	Location    string
	Status      HelpRequestStatus
	Reviewed    bool
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
