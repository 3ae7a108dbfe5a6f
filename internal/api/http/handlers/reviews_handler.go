package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/dto"
	"github.com/carelink/care-service/internal/service"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// ReviewsHandler manages review endpoints.
type ReviewsHandler struct {
	reviews *service.ReviewService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviewService *service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviewService}
}

// Create POST /reviews. Elderly author only.
func (h *ReviewsHandler) Create(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.HelpRequestID == "" {
		return apperrors.NewValidationError("help_request_id required", nil)
	}
	review, err := h.reviews.CreateReview(c.Context(), principal.Account.ID, service.ReviewCreateInput{
		HelpRequestID: req.HelpRequestID,
		Rating:        req.Rating,
		Text:          req.Text,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, dto.FromReview(review))
}

// Edit PATCH /reviews/:reviewId. Author only.
func (h *ReviewsHandler) Edit(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.EditReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	review, err := h.reviews.EditReview(c.Context(), principal.Account.ID, c.Params("reviewId"), service.ReviewEditInput{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.FromReview(review))
}

// ListByUser GET /reviews/user/:userId.
func (h *ReviewsHandler) ListByUser(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	reviews, err := h.reviews.ListByRecipient(c.Context(), c.Params("userId"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, dto.FromReview(&reviews[i]))
	}
	return ok(c, http.StatusOK, items)
}
