package dto

import (
	"time"

	"github.com/carelink/care-service/internal/domain"
)

// SuspendRequest payload for POST /admin/users/:userId/suspend.
type SuspendRequest struct {
	Duration int    `json:"duration"`
	Reason   string `json:"reason"`
}

// ReasonRequest payload for actions carrying only a reason.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// BroadcastRequest payload for POST /admin/broadcast.
type BroadcastRequest struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// AuditLogResponse is one moderation trail entry.
type AuditLogResponse struct {
	ID        string             `json:"id"`
	ActorID   string             `json:"actor_id"`
	Action    domain.AuditAction `json:"action"`
	TargetID  string             `json:"target_id"`
	Metadata  map[string]any     `json:"metadata"`
	CreatedAt time.Time          `json:"created_at"`
}

// FromAuditEntry maps a domain audit entry.
func FromAuditEntry(entry *domain.AuditLogEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		TargetID:  entry.TargetID,
		Metadata:  entry.Metadata,
		CreatedAt: entry.CreatedAt,
	}
}
