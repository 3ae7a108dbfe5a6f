package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// NotificationRepository persists outbound notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	DeleteByRecipient(ctx context.Context, recipientID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	metadata, err := json.Marshal(notification.Metadata)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO notifications (recipient_id, event_type, message, metadata, read)
        VALUES ($1,$2,$3,$4,FALSE)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.RecipientID,
		notification.EventType,
		notification.Message,
		metadata,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	base := `SELECT id, recipient_id, event_type, message, metadata, read, created_at
        FROM notifications WHERE recipient_id=$1`
	if unreadOnly {
		base += ` AND read=FALSE`
	}
	query := fmt.Sprintf(`%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, normalizeLimit(limit), normalizeOffset(offset))

	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		var metadata []byte
		if err := rows.Scan(
			&notification.ID,
			&notification.RecipientID,
			&notification.EventType,
			&notification.Message,
			&metadata,
			&notification.Read,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &notification.Metadata); err != nil {
				return nil, err
			}
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE id=$1 AND recipient_id=$2`, notificationID, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE recipient_id=$1 AND read=FALSE`, recipientID)
	return err
}

func (r *notificationRepository) DeleteByRecipient(ctx context.Context, recipientID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE recipient_id=$1`, recipientID)
	return err
}
