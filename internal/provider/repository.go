package provider

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrAlreadyOnboarded = errors.New("user already has a provider profile")
)

const providerColumns = `id, user_id, category, bio, hourly_rate, payout_phone, status, available, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID int, req OnboardRequest) (*Provider, error) {
	query := `
		INSERT INTO providers (user_id, category, bio, hourly_rate, payout_phone, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + providerColumns

	var p Provider
	err := r.db.GetContext(ctx, &p, query, userID, req.Category, req.Bio, req.HourlyRate, req.PayoutPhone)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyOnboarded
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Provider, error) {
	var p Provider
	err := r.db.GetContext(ctx, &p, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Provider, error) {
	var p Provider
	err := r.db.GetContext(ctx, &p, `SELECT `+providerColumns+` FROM providers WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListApproved(ctx context.Context, category string) ([]ProviderWithUser, error) {
	query := `
		SELECT
			p.id, p.user_id, p.category, p.bio, p.hourly_rate, p.payout_phone,
			p.status, p.available, p.created_at, p.updated_at,
			u.name AS user_name,
			u.email AS user_email
		FROM providers p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = 'approved'
		  AND ($1 = '' OR p.category = $1)
		ORDER BY p.created_at DESC
	`

	var providers []ProviderWithUser
	err := r.db.SelectContext(ctx, &providers, query, category)
	if err != nil {
		return nil, err
	}

	return providers, nil
}

func (r *repository) ListByStatus(ctx context.Context, status string) ([]ProviderWithUser, error) {
	query := `
		SELECT
			p.id, p.user_id, p.category, p.bio, p.hourly_rate, p.payout_phone,
			p.status, p.available, p.created_at, p.updated_at,
			u.name AS user_name,
			u.email AS user_email
		FROM providers p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = $1
		ORDER BY p.created_at ASC
	`

	var providers []ProviderWithUser
	err := r.db.SelectContext(ctx, &providers, query, status)
	if err != nil {
		return nil, err
	}

	return providers, nil
}

func (r *repository) SetStatus(ctx context.Context, id int, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE providers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}

func (r *repository) SetAvailability(ctx context.Context, userID int, available bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE providers SET available = $2, updated_at = NOW() WHERE user_id = $1 AND status = 'approved'`,
		userID, available)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}
