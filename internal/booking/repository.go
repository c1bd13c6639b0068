package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidTransition   = errors.New("booking is not in a state allowing this transition")
	ErrAlreadyAssigned     = errors.New("booking already has a provider")
)

const bookingColumns = `id, seeker_id, provider_id, category, description, location, scheduled_at, hours, total_amount, status, payment_status, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, seekerID int, req CreateRequest) (*Booking, error) {
	query := `
		INSERT INTO bookings (seeker_id, category, description, location, scheduled_at, hours, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', 'pending')
		RETURNING ` + bookingColumns

	var b Booking
	err := r.db.GetContext(ctx, &b, query,
		seekerID, req.Category, req.Description, req.Location, req.ScheduledAt, req.Hours)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListBySeeker(ctx context.Context, seekerID int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+` FROM bookings WHERE seeker_id = $1 ORDER BY created_at DESC`, seekerID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+` FROM bookings WHERE provider_id = $1 ORDER BY scheduled_at DESC`, providerID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByStatus(ctx context.Context, status string) ([]BookingWithSeeker, error) {
	query := `
		SELECT
			b.id, b.seeker_id, b.provider_id, b.category, b.description, b.location,
			b.scheduled_at, b.hours, b.total_amount, b.status, b.payment_status,
			b.created_at, b.updated_at,
			u.name AS seeker_name,
			u.email AS seeker_email
		FROM bookings b
		JOIN users u ON b.seeker_id = u.id
		WHERE b.status = $1
		ORDER BY b.created_at ASC
	`

	var bookings []BookingWithSeeker
	err := r.db.SelectContext(ctx, &bookings, query, status)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// AssignProvider is conditional on the booking still being unassigned so two
// admins acting at once cannot both win.
func (r *repository) AssignProvider(ctx context.Context, bookingID, providerID int, totalAmount int64) error {
	query := `
		UPDATE bookings
		SET provider_id = $2, total_amount = $3, status = 'assigned', updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND provider_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, bookingID, providerID, totalAmount)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAlreadyAssigned
	}

	return nil
}

func (r *repository) TransitionStatus(ctx context.Context, bookingID int, from []string, to string) error {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
	`

	result, err := r.db.ExecContext(ctx, query, bookingID, pq.Array(from), to)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvalidTransition
	}

	return nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, bookingID int, paymentStatus string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`,
		bookingID, paymentStatus)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// SumPendingEarnings totals paid bookings that have not completed yet, used by
// the wallet to recompute the pending balance from scratch.
func (r *repository) SumPendingEarnings(ctx context.Context, providerID int) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM bookings
		WHERE provider_id = $1
		  AND status IN ('confirmed', 'in_progress')
		  AND payment_status = 'paid'
	`

	var total int64
	err := r.db.GetContext(ctx, &total, query, providerID)
	if err != nil {
		return 0, err
	}
	return total, nil
}
