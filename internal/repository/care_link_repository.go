package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// CareLinkRepository encapsulates caregiver-elderly associations.
type CareLinkRepository interface {
	Create(ctx context.Context, link *domain.CareLink) error
	Delete(ctx context.Context, caregiverID, elderlyID string) error
	GetByPair(ctx context.Context, caregiverID, elderlyID string) (*domain.CareLink, error)
	ListCaregivers(ctx context.Context, elderlyID string) ([]domain.CareLink, error)
	ListElderly(ctx context.Context, caregiverID string) ([]domain.CareLink, error)
}

type careLinkRepository struct {
	pool *pgxpool.Pool
}

// NewCareLinkRepository instantiates repository.
func NewCareLinkRepository(pool *pgxpool.Pool) CareLinkRepository {
	return &careLinkRepository{pool: pool}
}

func (r *careLinkRepository) Create(ctx context.Context, link *domain.CareLink) error {
	const query = `
        INSERT INTO care_links (caregiver_id, elderly_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, link.CaregiverID, link.ElderlyID).
		Scan(&link.ID, &link.CreatedAt)
}

func (r *careLinkRepository) Delete(ctx context.Context, caregiverID, elderlyID string) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM care_links WHERE caregiver_id=$1 AND elderly_id=$2`, caregiverID, elderlyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *careLinkRepository) GetByPair(ctx context.Context, caregiverID, elderlyID string) (*domain.CareLink, error) {
	const query = `
        SELECT id, caregiver_id, elderly_id, created_at
        FROM care_links WHERE caregiver_id=$1 AND elderly_id=$2`
	var link domain.CareLink
	if err := r.pool.QueryRow(ctx, query, caregiverID, elderlyID).Scan(
		&link.ID,
		&link.CaregiverID,
		&link.ElderlyID,
		&link.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *careLinkRepository) ListCaregivers(ctx context.Context, elderlyID string) ([]domain.CareLink, error) {
	const query = `
        SELECT id, caregiver_id, elderly_id, created_at
        FROM care_links WHERE elderly_id=$1`
	return r.list(ctx, query, elderlyID)
}

func (r *careLinkRepository) ListElderly(ctx context.Context, caregiverID string) ([]domain.CareLink, error) {
	const query = `
        SELECT id, caregiver_id, elderly_id, created_at
        FROM care_links WHERE caregiver_id=$1`
	return r.list(ctx, query, caregiverID)
}

func (r *careLinkRepository) list(ctx context.Context, query string, arg any) ([]domain.CareLink, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CareLink
	for rows.Next() {
		var link domain.CareLink
		if err := rows.Scan(&link.ID, &link.CaregiverID, &link.ElderlyID, &link.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	return result, rows.Err()
}
