package review

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrAlreadyReviewed = errors.New("booking already reviewed")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, bookingID, seekerID, providerID, rating int, comment string) (*Review, error) {
	query := `
		INSERT INTO reviews (booking_id, seeker_id, provider_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, seeker_id, provider_id, rating, comment, created_at
	`

	var rev Review
	err := r.db.GetContext(ctx, &rev, query, bookingID, seekerID, providerID, rating, comment)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	return &rev, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID, limit, offset int) ([]ReviewWithSeeker, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT
			r.id, r.booking_id, r.seeker_id, r.provider_id, r.rating, r.comment, r.created_at,
			u.name AS seeker_name
		FROM reviews r
		JOIN users u ON r.seeker_id = u.id
		WHERE r.provider_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	var reviews []ReviewWithSeeker
	err := r.db.SelectContext(ctx, &reviews, query, providerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *repository) GetProviderStats(ctx context.Context, providerID int) (*ProviderStats, error) {
	query := `
		SELECT
			$1::int AS provider_id,
			COUNT(r.id) AS review_count,
			COALESCE(AVG(r.rating), 0) AS average_rating,
			(SELECT COUNT(*) FROM bookings b WHERE b.provider_id = $1 AND b.status = 'completed') AS completed_jobs
		FROM reviews r
		WHERE r.provider_id = $1
	`

	var stats ProviderStats
	err := r.db.GetContext(ctx, &stats, query, providerID)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
