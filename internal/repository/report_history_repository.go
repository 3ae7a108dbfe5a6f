package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// ReportHistoryRepository appends and reads report status transitions.
type ReportHistoryRepository interface {
	Create(ctx context.Context, change *domain.ReportStatusChange) error
	ListByReport(ctx context.Context, reportID string) ([]domain.ReportStatusChange, error)
}

type reportHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewReportHistoryRepository instantiates repository.
func NewReportHistoryRepository(pool *pgxpool.Pool) ReportHistoryRepository {
	return &reportHistoryRepository{pool: pool}
}

func (r *reportHistoryRepository) Create(ctx context.Context, change *domain.ReportStatusChange) error {
	const query = `
        INSERT INTO report_status_history (report_id, from_status, to_status, actor_id, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		change.ReportID,
		change.FromStatus,
		change.ToStatus,
		change.ActorID,
		change.Note,
	).Scan(&change.ID, &change.CreatedAt)
}

func (r *reportHistoryRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ReportStatusChange, error) {
	const query = `
        SELECT id, report_id, from_status, to_status, actor_id, note, created_at
        FROM report_status_history WHERE report_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReportStatusChange
	for rows.Next() {
		var change domain.ReportStatusChange
		if err := rows.Scan(
			&change.ID,
			&change.ReportID,
			&change.FromStatus,
			&change.ToStatus,
			&change.ActorID,
			&change.Note,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
