package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/repository"
	apperrors "github.com/carelink/care-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Account *domain.Account
}

// SuspensionExpirer applies a lazy unsuspension when a suspended account's
// window has already passed. Satisfied by the moderation service.
type SuspensionExpirer interface {
	UnsuspendIfExpired(ctx context.Context, accountID string) (*domain.Account, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
	expirer  SuspensionExpirer
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository, expirer SuspensionExpirer) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts, expirer: expirer}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("account not found")
		}
		return err
	}

	if account.SuspensionExpired(time.Now()) && m.expirer != nil {
		if refreshed, expErr := m.expirer.UnsuspendIfExpired(c.Context(), account.ID); expErr == nil && refreshed != nil {
			account = refreshed
		}
	}

	switch account.Status {
	case domain.AccountStatusSuspended:
		details := map[string]any{}
		if account.SuspensionEnd != nil {
			details["suspension_end"] = account.SuspensionEnd
		}
		return apperrors.NewDomainError("ACCOUNT_SUSPENDED", "account is suspended", fiber.StatusForbidden, details)
	case domain.AccountStatusDeactivated:
		return apperrors.NewForbidden("account is deactivated")
	}

	SetPrincipal(c, &Principal{Account: account})
	return c.Next()
}

// SetPrincipal attaches an authenticated principal to the request.
func SetPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
