package dto

import (
	"time"

	"github.com/carelink/care-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public shape of an account.
type AccountResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Role        domain.Role          `json:"role"`
	Status      domain.AccountStatus `json:"status"`
	Phone       string               `json:"phone,omitempty"`
	Address     string               `json:"address,omitempty"`
	RatingAvg   float64              `json:"rating_avg"`
	RatingCount int                  `json:"rating_count"`

	SuspensionReason *string    `json:"suspension_reason,omitempty"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	SuspensionDays   *int       `json:"suspension_days,omitempty"`
	SuspensionEnd    *time.Time `json:"suspension_end,omitempty"`

	DeactivationReason *string    `json:"deactivation_reason,omitempty"`
	DeactivatedAt      *time.Time `json:"deactivated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FromAccount maps a domain account to its response shape.
func FromAccount(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:                 account.ID,
		Name:               account.Name,
		Email:              account.Email,
		Role:               account.Role,
		Status:             account.Status,
		Phone:              account.Phone,
		Address:            account.Address,
		RatingAvg:          account.RatingAvg,
		RatingCount:        account.RatingCount,
		SuspensionReason:   account.SuspensionReason,
		SuspendedAt:        account.SuspendedAt,
		SuspensionDays:     account.SuspensionDays,
		SuspensionEnd:      account.SuspensionEnd,
		DeactivationReason: account.DeactivationReason,
		DeactivatedAt:      account.DeactivatedAt,
		CreatedAt:          account.CreatedAt,
	}
}
