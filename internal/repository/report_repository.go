package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// ReportFilter captures admin listing parameters.
type ReportFilter struct {
	Statuses   []domain.ReportStatus
	ReportedID *string
	Limit      int
	Offset     int
}

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	Update(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Report, error)
	ListWithFilter(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `id, reporter_id, reported_id, help_request_id, reason, description,
        status, evidence_keys, created_at, updated_at`

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (reporter_id, reported_id, help_request_id, reason, description, status, evidence_keys)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		report.ReporterID,
		report.ReportedID,
		report.HelpRequestID,
		report.Reason,
		report.Description,
		report.Status,
		report.EvidenceKeys,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) Update(ctx context.Context, report *domain.Report) error {
	const query = `
        UPDATE reports SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, report.Status, report.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1`
	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.ReporterID,
		&report.ReportedID,
		&report.HelpRequestID,
		&report.Reason,
		&report.Description,
		&report.Status,
		&report.EvidenceKeys,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE reporter_id=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		reportColumns, normalizeLimit(limit), normalizeOffset(offset))
	rows, err := r.pool.Query(ctx, query, reporterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) ListWithFilter(ctx context.Context, filter ReportFilter) ([]domain.Report, error) {
	base := `SELECT ` + reportColumns + ` FROM reports`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ReportedID != nil {
		args = append(args, *filter.ReportedID)
		clauses = append(clauses, fmt.Sprintf("reported_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), normalizeLimit(filter.Limit), normalizeOffset(filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.ReporterID,
			&report.ReportedID,
			&report.HelpRequestID,
			&report.Reason,
			&report.Description,
			&report.Status,
			&report.EvidenceKeys,
			&report.CreatedAt,
			&report.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
