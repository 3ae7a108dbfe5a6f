package dto

import (
	"time"

	"github.com/carelink/care-service/internal/domain"
)

// CreateReviewRequest payload for a new review.
type CreateReviewRequest struct {
	HelpRequestID string `json:"help_request_id"`
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
}

// EditReviewRequest payload for author edits.
type EditReviewRequest struct {
	Rating *int    `json:"rating,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// ReviewResponse is the public shape of a review.
type ReviewResponse struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	RecipientID   string    `json:"recipient_id"`
	HelpRequestID string    `json:"help_request_id"`
	Rating        int       `json:"rating"`
	Text          string    `json:"text,omitempty"`
	Edited        bool      `json:"edited"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromReview maps a domain review.
func FromReview(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:            review.ID,
		AuthorID:      review.AuthorID,
		RecipientID:   review.RecipientID,
		HelpRequestID: review.HelpRequestID,
		Rating:        review.Rating,
		Text:          review.Text,
		Edited:        review.Edited,
		CreatedAt:     review.CreatedAt,
	}
}
