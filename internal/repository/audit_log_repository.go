package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// AuditLogRepository records immutable moderation trail entries.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error)
	ListByTarget(ctx context.Context, targetID string, limit, offset int) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository instantiates repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO audit_log (actor_id, action, target_id, metadata)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.TargetID,
		metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, actor_id, action, target_id, metadata, created_at
        FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *auditLogRepository) ListByTarget(ctx context.Context, targetID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, actor_id, action, target_id, metadata, created_at
        FROM audit_log WHERE target_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, targetID, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *auditLogRepository) list(ctx context.Context, query string, args ...any) ([]domain.AuditLogEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var metadata []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.TargetID,
			&metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
