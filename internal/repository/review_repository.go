package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/care-service/internal/domain"
)

// ReviewRepository encapsulates review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Review, error)
	GetByRequestAndAuthor(ctx context.Context, requestID, authorID string) (*domain.Review, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

const reviewColumns = `id, author_id, recipient_id, help_request_id, rating, body, edited, created_at, updated_at`

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (author_id, recipient_id, help_request_id, rating, body)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		review.AuthorID,
		review.RecipientID,
		review.HelpRequestID,
		review.Rating,
		review.Text,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	const query = `
        UPDATE reviews SET rating=$1, body=$2, edited=$3, updated_at=NOW() WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, review.Rating, review.Text, review.Edited, review.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reviewRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE recipient_id=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		reviewColumns, normalizeLimit(limit), normalizeOffset(offset))
	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.AuthorID,
			&review.RecipientID,
			&review.HelpRequestID,
			&review.Rating,
			&review.Text,
			&review.Edited,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, review)
	}
	return result, rows.Err()
}

func (r *reviewRepository) GetByRequestAndAuthor(ctx context.Context, requestID, authorID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE help_request_id=$1 AND author_id=$2`
	var review domain.Review
	if err := r.pool.QueryRow(ctx, query, requestID, authorID).Scan(
		&review.ID,
		&review.AuthorID,
		&review.RecipientID,
		&review.HelpRequestID,
		&review.Rating,
		&review.Text,
		&review.Edited,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Review, error) {
	var review domain.Review
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&review.ID,
		&review.AuthorID,
		&review.RecipientID,
		&review.HelpRequestID,
		&review.Rating,
		&review.Text,
		&review.Edited,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &review, nil
}
