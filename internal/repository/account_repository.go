package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// AccountFilter captures admin listing parameters.
type AccountFilter struct {
	Roles    []domain.Role
	Statuses []domain.AccountStatus
	Search   *string
	Limit    int
	Offset   int
}

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	ListExpiredSuspensions(ctx context.Context, now time.Time) ([]domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
	ListAll(ctx context.Context) ([]domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, name, email, password_hash, role, status, phone, address,
        rating_avg, rating_count, suspension_reason, suspended_at, suspension_days,
        suspension_end, deactivation_reason, deactivated_at, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, password_hash, role, status, phone, address)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Status,
		account.Phone,
		account.Address,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET name=$1, email=$2, password_hash=$3, status=$4, phone=$5, address=$6,
            rating_avg=$7, rating_count=$8, suspension_reason=$9, suspended_at=$10,
            suspension_days=$11, suspension_end=$12, deactivation_reason=$13, deactivated_at=$14,
            updated_at=NOW()
        WHERE id=$15`

	cmd, err := r.pool.Exec(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Status,
		account.Phone,
		account.Address,
		account.RatingAvg,
		account.RatingCount,
		account.SuspensionReason,
		account.SuspendedAt,
		account.SuspensionDays,
		account.SuspensionEnd,
		account.DeactivationReason,
		account.DeactivatedAt,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) ListWithFilter(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	base := `SELECT ` + accountColumns + ` FROM accounts`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Roles) > 0 {
		placeholders := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			args = append(args, role)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("role IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) ListExpiredSuspensions(ctx context.Context, now time.Time) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status=$1 AND suspension_end IS NOT NULL AND suspension_end < $2`
	rows, err := r.pool.Query(ctx, query, domain.AccountStatusSuspended, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role=$1`
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.Phone,
		&account.Address,
		&account.RatingAvg,
		&account.RatingCount,
		&account.SuspensionReason,
		&account.SuspendedAt,
		&account.SuspensionDays,
		&account.SuspensionEnd,
		&account.DeactivationReason,
		&account.DeactivatedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.PasswordHash,
			&account.Role,
			&account.Status,
			&account.Phone,
			&account.Address,
			&account.RatingAvg,
			&account.RatingCount,
			&account.SuspensionReason,
			&account.SuspendedAt,
			&account.SuspensionDays,
			&account.SuspensionEnd,
			&account.DeactivationReason,
			&account.DeactivatedAt,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
