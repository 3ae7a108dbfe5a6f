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

// ReviewService handles review creation, author edits and admin removal.
type ReviewService struct {
	reviews    repository.ReviewRepository
	requests   repository.HelpRequestRepository
	accounts   repository.AccountRepository
	moderation *ModerationService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	ReviewRepo  repository.ReviewRepository
	RequestRepo repository.HelpRequestRepository
	AccountRepo repository.AccountRepository
	Moderation  *ModerationService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ReviewCreateInput describes a new review.
type ReviewCreateInput struct {
	HelpRequestID string
	Rating        int
	Text          string
}

// ReviewEditInput carries author edits. Nil fields keep current values.
type ReviewEditInput struct {
	Rating *int
	Text   *string
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		reviews:    deps.ReviewRepo,
		requests:   deps.RequestRepo,
		accounts:   deps.AccountRepo,
		moderation: deps.Moderation,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateReview records a review for the volunteer who completed the
// author's help request and folds the rating into the recipient's
// running mean.
func (s *ReviewService) CreateReview(ctx context.Context, authorID string, input ReviewCreateInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": input.Rating})
	}

	request, err := s.requests.GetByID(ctx, input.HelpRequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("help request", map[string]any{"id": input.HelpRequestID})
		}
		return nil, err
	}
	if request.ElderlyID != authorID {
		return nil, apperrors.NewForbidden("only the request owner can leave a review")
	}
	if request.Status != domain.HelpRequestStatusCompleted || request.VolunteerID == nil {
		return nil, apperrors.NewIneligible("request is not completed")
	}
	if request.Reviewed {
		return nil, apperrors.NewConflict("request has already been reviewed", map[string]any{"request_id": request.ID})
	}

	review := &domain.Review{
		AuthorID:      authorID,
		RecipientID:   *request.VolunteerID,
		HelpRequestID: request.ID,
		Rating:        input.Rating,
		Text:          strings.TrimSpace(input.Text),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	request.Reviewed = true
	if err := s.requests.Update(ctx, request); err != nil {
		s.logger.Warn("mark request reviewed failed", zap.String("request_id", request.ID), zap.Error(err))
	}

	s.applyRating(ctx, review.RecipientID, review.Rating)
	s.publish(ctx, events.Event{
		Type:    events.EventReviewReceived,
		ActorID: authorID,
		Payload: events.ReviewPayload{
			ReviewID:    review.ID,
			AuthorID:    review.AuthorID,
			RecipientID: review.RecipientID,
			Rating:      review.Rating,
		},
	})
	return review, nil
}

// EditReview lets the original author revise their review. Edits set the
// edited flag but deliberately leave the recipient's aggregate untouched,
// matching the shipped product behavior.
func (s *ReviewService) EditReview(ctx context.Context, callerID, reviewID string, input ReviewEditInput) (*domain.Review, error) {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.AuthorID != callerID {
		return nil, apperrors.NewForbidden("only the author can edit this review")
	}
	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": *input.Rating})
		}
		review.Rating = *input.Rating
	}
	if input.Text != nil {
		review.Text = strings.TrimSpace(*input.Text)
	}
	review.Edited = true

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListByRecipient returns reviews received by an account.
func (s *ReviewService) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Review, error) {
	return s.reviews.ListByRecipient(ctx, recipientID, limit, offset)
}

// AdminDelete removes a review as a moderation action. The recipient's
// aggregate is not recomputed; see the product decision recorded in the
// design notes.
func (s *ReviewService) AdminDelete(ctx context.Context, adminID, reviewID, reason string) error {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return err
	}

	s.moderation.appendAudit(ctx, adminID, domain.AuditDeleteReview, review.ID, map[string]any{
		"reason":       reason,
		"author_id":    review.AuthorID,
		"recipient_id": review.RecipientID,
	})
	s.publish(ctx, events.Event{
		Type:    events.EventReviewRemoved,
		ActorID: adminID,
		Payload: events.ReviewPayload{
			ReviewID:    review.ID,
			AuthorID:    review.AuthorID,
			RecipientID: review.RecipientID,
			Rating:      review.Rating,
			Reason:      reason,
		},
	})
	return nil
}

// applyRating folds one rating into the recipient's running mean:
// new_mean = (old_mean*old_count + rating) / (old_count+1).
func (s *ReviewService) applyRating(ctx context.Context, recipientID string, rating int) {
	recipient, err := s.accounts.GetByID(ctx, recipientID)
	if err != nil {
		s.logger.Warn("load review recipient failed", zap.String("account_id", recipientID), zap.Error(err))
		return
	}
	if recipient.RatingCount == 0 {
		recipient.RatingAvg = float64(rating)
		recipient.RatingCount = 1
	} else {
		total := recipient.RatingAvg*float64(recipient.RatingCount) + float64(rating)
		recipient.RatingCount++
		recipient.RatingAvg = total / float64(recipient.RatingCount)
	}
	if err := s.accounts.Update(ctx, recipient); err != nil {
		s.logger.Warn("update rating aggregate failed", zap.String("account_id", recipientID), zap.Error(err))
	}
}

func (s *ReviewService) loadReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("review", map[string]any{"id": reviewID})
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) publish(ctx context.Context, event events.Event) {
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
