package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carelink/care-service/internal/auth"
	"github.com/carelink/care-service/internal/config"
	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/repository"
	apperrors "github.com/carelink/care-service/pkg/util"
)

// AccountService coordinates registration and login flows.
type AccountService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	expirer    auth.SuspensionExpirer
	bcryptCost int
}

// RegisterInput describes a signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Phone    string
	Address  string
}

// NewAccountService builds the service. The expirer applies lazy
// unsuspension at login; a suspended user holds no valid token, so login
// is the first place an expired window can be noticed.
func NewAccountService(cfg config.Config, accounts repository.AccountRepository, expirer auth.SuspensionExpirer) *AccountService {
	return &AccountService{
		accounts:   accounts,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		expirer:    expirer,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. Admin accounts are seeded out of band
// and cannot be self-registered.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Account, string, time.Time, error) {
	if input.Role == domain.RoleAdmin {
		return nil, "", time.Time{}, apperrors.NewForbidden("admin accounts cannot be registered")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	account := &domain.Account{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       domain.AccountStatusActive,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Login authenticates an account. Suspended and deactivated accounts are
// refused with their status surfaced to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	if account.SuspensionExpired(time.Now()) && s.expirer != nil {
		if refreshed, expErr := s.expirer.UnsuspendIfExpired(ctx, account.ID); expErr == nil && refreshed != nil {
			account = refreshed
		}
	}

	switch account.Status {
	case domain.AccountStatusSuspended:
		details := map[string]any{}
		if account.SuspensionEnd != nil {
			details["suspension_end"] = account.SuspensionEnd
		}
		return nil, "", time.Time{}, apperrors.NewDomainError("ACCOUNT_SUSPENDED", "account is suspended", http.StatusForbidden, details)
	case domain.AccountStatusDeactivated:
		return nil, "", time.Time{}, apperrors.NewForbidden("account is deactivated")
	}

	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// ListAccounts returns accounts for the admin directory.
func (s *AccountService) ListAccounts(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	return s.accounts.ListWithFilter(ctx, filter)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
