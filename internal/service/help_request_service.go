package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
	"github.com/carelink/care-service/internal/repository"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// HelpRequestService coordinates the help request lifecycle between
// elderly authors and volunteers.
type HelpRequestService struct {
	requests   repository.HelpRequestRepository
	dispatcher events.Dispatcher
}

// HelpRequestCreateInput describes a new task.
type HelpRequestCreateInput struct {
	Title       string
	Description string
	Category    string
	Location    string
}

// NewHelpRequestService constructs the service.
func NewHelpRequestService(requests repository.HelpRequestRepository, dispatcher events.Dispatcher) *HelpRequestService {
	return &HelpRequestService{requests: requests, dispatcher: dispatcher}
}

// Create posts a new open help request.
func (s *HelpRequestService) Create(ctx context.Context, elderlyID string, input HelpRequestCreateInput) (*domain.HelpRequest, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	request := &domain.HelpRequest{
		ElderlyID:   elderlyID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Location:    strings.TrimSpace(input.Location),
		Status:      domain.HelpRequestStatusOpen,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListOpen returns requests volunteers can pick up.
func (s *HelpRequestService) ListOpen(ctx context.Context, limit, offset int) ([]domain.HelpRequest, error) {
	return s.requests.ListOpen(ctx, limit, offset)
}

// ListMine returns the caller's requests, by authorship for elderly users
// and by assignment for volunteers.
func (s *HelpRequestService) ListMine(ctx context.Context, account *domain.Account, limit, offset int) ([]domain.HelpRequest, error) {
	if account.Role == domain.RoleVolunteer {
		return s.requests.ListByVolunteer(ctx, account.ID, limit, offset)
	}
	return s.requests.ListByElderly(ctx, account.ID, limit, offset)
}

// ListByElderly returns an elderly account's requests, used by linked
// caregivers monitoring that account.
func (s *HelpRequestService) ListByElderly(ctx context.Context, elderlyID string, limit, offset int) ([]domain.HelpRequest, error) {
	return s.requests.ListByElderly(ctx, elderlyID, limit, offset)
}

// Accept assigns an open request to a volunteer. A request someone else
// already took yields a conflict.
func (s *HelpRequestService) Accept(ctx context.Context, volunteerID, requestID string) (*domain.HelpRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch request.Status {
	case domain.HelpRequestStatusOpen:
	case domain.HelpRequestStatusAccepted:
		return nil, apperrors.NewConflict("request has already been accepted", map[string]any{"request_id": request.ID})
	default:
		return nil, apperrors.NewIneligible("request is no longer open")
	}

	now := time.Now()
	request.Status = domain.HelpRequestStatusAccepted
	request.VolunteerID = &volunteerID
	request.AcceptedAt = &now
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventRequestAccepted,
		ActorID: volunteerID,
		Payload: events.RequestPayload{
			RequestID:   request.ID,
			ElderlyID:   request.ElderlyID,
			VolunteerID: request.VolunteerID,
			Title:       request.Title,
		},
	})
	return request, nil
}

// Complete marks an accepted request done by its assigned volunteer.
func (s *HelpRequestService) Complete(ctx context.Context, volunteerID, requestID string) (*domain.HelpRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.HelpRequestStatusAccepted {
		return nil, apperrors.NewIneligible("request is not in progress")
	}
	if request.VolunteerID == nil || *request.VolunteerID != volunteerID {
		return nil, apperrors.NewForbidden("only the assigned volunteer can complete this request")
	}

	now := time.Now()
	request.Status = domain.HelpRequestStatusCompleted
	request.CompletedAt = &now
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventRequestCompleted,
		ActorID: volunteerID,
		Payload: events.RequestPayload{
			RequestID:   request.ID,
			ElderlyID:   request.ElderlyID,
			VolunteerID: request.VolunteerID,
			Title:       request.Title,
		},
	})
	return request, nil
}

// Cancel withdraws an open request by its author.
func (s *HelpRequestService) Cancel(ctx context.Context, elderlyID, requestID string) (*domain.HelpRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ElderlyID != elderlyID {
		return nil, apperrors.NewForbidden("only the author can cancel this request")
	}
	if request.Status != domain.HelpRequestStatusOpen {
		return nil, apperrors.NewIneligible("only open requests can be cancelled")
	}

	request.Status = domain.HelpRequestStatusCancelled
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventRequestCancelled,
		ActorID: elderlyID,
		Payload: events.RequestPayload{
			RequestID: request.ID,
			ElderlyID: request.ElderlyID,
			Title:     request.Title,
		},
	})
	return request, nil
}

func (s *HelpRequestService) loadRequest(ctx context.Context, requestID string) (*domain.HelpRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("help request", map[string]any{"id": requestID})
		}
		return nil, err
	}
	return request, nil
}

func (s *HelpRequestService) publish(ctx context.Context, event events.Event) {
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
