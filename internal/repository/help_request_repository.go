package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// HelpRequestRepository encapsulates help request persistence.
type HelpRequestRepository interface {
	Create(ctx context.Context, request *domain.HelpRequest) error
	Update(ctx context.Context, request *domain.HelpRequest) error
	GetByID(ctx context.Context, id string) (*domain.HelpRequest, error)
	ListOpen(ctx context.Context, limit, offset int) ([]domain.HelpRequest, error)
	ListByElderly(ctx context.Context, elderlyID string, limit, offset int) ([]domain.HelpRequest, error)
	ListByVolunteer(ctx context.Context, volunteerID string, limit, offset int) ([]domain.HelpRequest, error)
}

type helpRequestRepository struct {
	pool *pgxpool.Pool
}

// NewHelpRequestRepository instantiates repository.
func NewHelpRequestRepository(pool *pgxpool.Pool) HelpRequestRepository {
	return &helpRequestRepository{pool: pool}
}

const helpRequestColumns = `id, elderly_id, volunteer_id, title, description, category, location,
        status, reviewed, accepted_at, completed_at, created_at, updated_at`

func (r *helpRequestRepository) Create(ctx context.Context, request *domain.HelpRequest) error {
	const query = `
        INSERT INTO help_requests (elderly_id, title, description, category, location, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.ElderlyID,
		request.Title,
		request.Description,
		request.Category,
		request.Location,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *helpRequestRepository) Update(ctx context.Context, request *domain.HelpRequest) error {
	const query = `
        UPDATE help_requests SET volunteer_id=$1, title=$2, description=$3, category=$4, location=$5,
            status=$6, reviewed=$7, accepted_at=$8, completed_at=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		request.VolunteerID,
		request.Title,
		request.Description,
		request.Category,
		request.Location,
		request.Status,
		request.Reviewed,
		request.AcceptedAt,
		request.CompletedAt,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *helpRequestRepository) GetByID(ctx context.Context, id string) (*domain.HelpRequest, error) {
	query := `SELECT ` + helpRequestColumns + ` FROM help_requests WHERE id=$1`
	var request domain.HelpRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.ElderlyID,
		&request.VolunteerID,
		&request.Title,
		&request.Description,
		&request.Category,
		&request.Location,
		&request.Status,
		&request.Reviewed,
		&request.AcceptedAt,
		&request.CompletedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *helpRequestRepository) ListOpen(ctx context.Context, limit, offset int) ([]domain.HelpRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM help_requests WHERE status=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		helpRequestColumns, normalizeLimit(limit), normalizeOffset(offset))
	return r.list(ctx, query, domain.HelpRequestStatusOpen)
}

func (r *helpRequestRepository) ListByElderly(ctx context.Context, elderlyID string, limit, offset int) ([]domain.HelpRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM help_requests WHERE elderly_id=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		helpRequestColumns, normalizeLimit(limit), normalizeOffset(offset))
	return r.list(ctx, query, elderlyID)
}

func (r *helpRequestRepository) ListByVolunteer(ctx context.Context, volunteerID string, limit, offset int) ([]domain.HelpRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM help_requests WHERE volunteer_id=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		helpRequestColumns, normalizeLimit(limit), normalizeOffset(offset))
	return r.list(ctx, query, volunteerID)
}

func (r *helpRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.HelpRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HelpRequest
	for rows.Next() {
		var request domain.HelpRequest
		if err := rows.Scan(
			&request.ID,
			&request.ElderlyID,
			&request.VolunteerID,
			&request.Title,
			&request.Description,
			&request.Category,
			&request.Location,
			&request.Status,
			&request.Reviewed,
			&request.AcceptedAt,
			&request.CompletedAt,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
