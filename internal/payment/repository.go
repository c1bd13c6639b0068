package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentInFlight = errors.New("payment already in flight for booking")
)

const paymentColumns = `id, reference, booking_id, payer_id, provider_id, rail, amount, currency, phone_number, status, failure_reason, vendor_transaction_id, vendor_metadata, expires_at, processed_at, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a pending payment. The partial unique index on
// booking_id over non-terminal rows turns a concurrent duplicate initiate
// into ErrPaymentInFlight.
func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	var out Payment
	err := r.db.GetContext(ctx, &out,
		`INSERT INTO payments (reference, booking_id, payer_id, provider_id, rail, amount, currency, phone_number, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
		 RETURNING `+paymentColumns,
		p.Reference, p.BookingID, p.PayerID, p.ProviderID, p.Rail, p.Amount, p.Currency, p.PhoneNumber, p.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrPaymentInFlight
		}
		return nil, fmt.Errorf("inserting payment: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("fetching payment: %w", err)
	}
	return &p, nil
}

func (r *repository) MarkProcessing(ctx context.Context, reference, vendorID string, metadata []byte) (bool, error) {
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = 'processing', vendor_transaction_id = $1, vendor_metadata = $2, updated_at = NOW()
		 WHERE reference = $3 AND status = 'pending'`,
		vendorID, metadata, reference)
	if err != nil {
		return false, fmt.Errorf("marking processing: %w", err)
	}
	return oneRow(res)
}

// RecordVendorPayload overwrites the stored vendor metadata with the most
// recent payload, replays included, so the row always carries the last word
// the vendor sent.
func (r *repository) RecordVendorPayload(ctx context.Context, reference string, metadata []byte) error {
	if len(metadata) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE payments SET vendor_metadata = $1, updated_at = NOW() WHERE reference = $2`,
		metadata, reference)
	if err != nil {
		return fmt.Errorf("recording vendor payload: %w", err)
	}
	return nil
}

func (r *repository) MarkSuccessful(ctx context.Context, reference string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = 'successful', processed_at = NOW(), updated_at = NOW()
		 WHERE reference = $1 AND status IN ('pending', 'processing')`,
		reference)
	if err != nil {
		return false, fmt.Errorf("marking successful: %w", err)
	}
	return oneRow(res)
}

func (r *repository) MarkFailed(ctx context.Context, reference, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = 'failed', failure_reason = $1, processed_at = NOW(), updated_at = NOW()
		 WHERE reference = $2 AND status IN ('pending', 'processing')`,
		reason, reference)
	if err != nil {
		return false, fmt.Errorf("marking failed: %w", err)
	}
	return oneRow(res)
}

func (r *repository) MarkCancelled(ctx context.Context, reference string, payerID int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = 'cancelled', processed_at = NOW(), updated_at = NOW()
		 WHERE reference = $1 AND payer_id = $2 AND status IN ('pending', 'processing')`,
		reference, payerID)
	if err != nil {
		return false, fmt.Errorf("marking cancelled: %w", err)
	}
	return oneRow(res)
}

// SweepExpired closes every in-flight payment past its deadline and returns
// the closed rows. Swept rows carry ExpiredReason so a payer checking status
// later sees why the attempt died.
func (r *repository) SweepExpired(ctx context.Context) ([]Payment, error) {
	expired := []Payment{}
	err := r.db.SelectContext(ctx, &expired,
		`UPDATE payments
		 SET status = 'expired', failure_reason = $1, processed_at = NOW(), updated_at = NOW()
		 WHERE status IN ('pending', 'processing') AND expires_at < NOW()
		 RETURNING `+paymentColumns,
		ExpiredReason)
	if err != nil {
		return nil, fmt.Errorf("sweeping expired payments: %w", err)
	}
	return expired, nil
}

func (r *repository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM payments
		 WHERE status IN ('successful', 'failed', 'cancelled', 'expired') AND updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning payments: %w", err)
	}
	return res.RowsAffected()
}

func (r *repository) ListByPayer(ctx context.Context, payerID int, status string, limit, offset int) ([]Payment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM payments WHERE payer_id = $1 AND ($2 = '' OR status = $2)`,
		payerID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("counting payments: %w", err)
	}

	payments := []Payment{}
	err = r.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE payer_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		payerID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing payments: %w", err)
	}
	return payments, total, nil
}

func oneRow(res sql.Result) (bool, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return affected == 1, nil
}
