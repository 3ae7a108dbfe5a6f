package domain

import "time"

// Notification is a persisted inbox entry for one recipient. A realtime
// push is attempted after the row is written, but delivery is never
// guaranteed; the row is the source of truth.
type Notification struct {
	ID          string
	RecipientID string
	EventType   string
	Message     string
	Metadata    map[string]any
	Read        bool
	CreatedAt   time.Time
}
