package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	redislib "github.com/redis/go-redis/v9"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
	"github.com/carelink/care-service/internal/repository"
	apperrors "github.com/carelink/care-service/pkg/util"
)

const pinKeyPrefix = "carelink:pin:"

// CaregiverService manages caregiver-elderly links and the linking PINs
// used to establish them. PINs live in redis with a short TTL and are
// consumed on first use.
type CaregiverService struct {
	links      repository.CareLinkRepository
	accounts   repository.AccountRepository
	redis      *redislib.Client
	pinTTL     time.Duration
	dispatcher events.Dispatcher
}

// CaregiverDependencies bundles collaborators for the caregiver service.
type CaregiverDependencies struct {
	LinkRepo    repository.CareLinkRepository
	AccountRepo repository.AccountRepository
	Redis       *redislib.Client
	PinTTL      time.Duration
	Dispatcher  events.Dispatcher
}

// NewCaregiverService constructs the service.
func NewCaregiverService(deps CaregiverDependencies) *CaregiverService {
	ttl := deps.PinTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CaregiverService{
		links:      deps.LinkRepo,
		accounts:   deps.AccountRepo,
		redis:      deps.Redis,
		pinTTL:     ttl,
		dispatcher: deps.Dispatcher,
	}
}

// IssuePin creates a 6-digit linking PIN for the elderly caller and stores
// it in redis for the configured TTL.
func (s *CaregiverService) IssuePin(ctx context.Context, elderlyID string) (string, time.Time, error) {
	pin, err := generatePin()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(s.pinTTL)
	if err := s.redis.Set(ctx, pinKeyPrefix+pin, elderlyID, s.pinTTL).Err(); err != nil {
		return "", time.Time{}, err
	}
	return pin, expiresAt, nil
}

// RedeemPin consumes a linking PIN and creates the caregiver-elderly link.
func (s *CaregiverService) RedeemPin(ctx context.Context, caregiverID, pin string) (*domain.CareLink, error) {
	elderlyID, err := s.redis.GetDel(ctx, pinKeyPrefix+pin).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, apperrors.NewNotFound("linking PIN", nil)
		}
		return nil, err
	}

	elderly, err := s.accounts.GetByID(ctx, elderlyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"id": elderlyID})
		}
		return nil, err
	}
	if elderly.Role != domain.RoleElderly {
		return nil, apperrors.NewIneligible("PIN does not belong to an elderly account")
	}
	if _, err := s.links.GetByPair(ctx, caregiverID, elderlyID); err == nil {
		return nil, apperrors.NewConflict("accounts are already linked", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	link := &domain.CareLink{CaregiverID: caregiverID, ElderlyID: elderlyID}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventCareLinkCreated,
		ActorID: caregiverID,
		Payload: events.CareLinkPayload{CaregiverID: caregiverID, ElderlyID: elderlyID},
	})
	return link, nil
}

// Unlink removes an existing caregiver-elderly association.
func (s *CaregiverService) Unlink(ctx context.Context, caregiverID, elderlyID string) error {
	if err := s.links.Delete(ctx, caregiverID, elderlyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("care link", nil)
		}
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventCareLinkRemoved,
		ActorID: caregiverID,
		Payload: events.CareLinkPayload{CaregiverID: caregiverID, ElderlyID: elderlyID},
	})
	return nil
}

// LinkedElderly returns the elderly accounts a caregiver monitors.
func (s *CaregiverService) LinkedElderly(ctx context.Context, caregiverID string) ([]domain.Account, error) {
	links, err := s.links.ListElderly(ctx, caregiverID)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(links))
	for _, link := range links {
		account, err := s.accounts.GetByID(ctx, link.ElderlyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		result = append(result, *account)
	}
	return result, nil
}

// LinkedCaregivers returns the caregiver ids linked to an elderly account,
// the recipient set for caregiver fan-out.
func (s *CaregiverService) LinkedCaregivers(ctx context.Context, elderlyID string) ([]string, error) {
	links, err := s.links.ListCaregivers(ctx, elderlyID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.CaregiverID)
	}
	return ids, nil
}

func (s *CaregiverService) publish(ctx context.Context, event events.Event) {
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

func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
