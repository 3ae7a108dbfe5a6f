package domain

import "time"

// Review is feedback left by an elderly user for the volunteer who
// completed their help request.
type Review struct {
	ID            string
	AuthorID      string
	RecipientID   string
	HelpRequestID string
	Rating        int
	Text          string
	Edited        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
