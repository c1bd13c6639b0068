package wallet

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
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrEarningExists       = errors.New("earning already recorded for booking")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

const walletColumns = `id, provider_id, balance, pending_balance, total_earnings, total_withdrawn, currency, created_at, updated_at`

const txColumns = `id, wallet_id, provider_id, booking_id, type, amount, status, reference, method, details, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetOrCreateWallet lazily provisions a wallet the first time a provider
// touches the ledger.
func (r *repository) GetOrCreateWallet(ctx context.Context, providerID int) (*Wallet, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (provider_id, balance, pending_balance, total_earnings, total_withdrawn, currency)
		 VALUES ($1, 0, 0, 0, 0, 'XAF')
		 ON CONFLICT (provider_id) DO NOTHING`, providerID)
	if err != nil {
		return nil, fmt.Errorf("creating wallet: %w", err)
	}

	var w Wallet
	err = r.db.GetContext(ctx, &w,
		`SELECT `+walletColumns+` FROM wallets WHERE provider_id = $1`, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("fetching wallet: %w", err)
	}
	return &w, nil
}

// RecordEarning writes the earning and commission rows for a booking and
// credits the wallet, all in one transaction. A second call for the same
// booking hits the unique earning index and returns ErrEarningExists with
// no ledger change.
func (r *repository) RecordEarning(ctx context.Context, providerID, bookingID int, gross, net, commission int64, reference string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallets (provider_id, balance, pending_balance, total_earnings, total_withdrawn, currency)
		 VALUES ($1, 0, 0, 0, 0, 'XAF')
		 ON CONFLICT (provider_id) DO NOTHING`, providerID)
	if err != nil {
		return fmt.Errorf("ensuring wallet: %w", err)
	}

	var walletID int
	if err := tx.GetContext(ctx, &walletID,
		`SELECT id FROM wallets WHERE provider_id = $1 FOR UPDATE`, providerID); err != nil {
		return fmt.Errorf("locking wallet: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (wallet_id, provider_id, booking_id, type, amount, status, reference, method, details)
		 VALUES ($1, $2, $3, 'earning', $4, 'completed', $5, '', '')`,
		walletID, providerID, bookingID, net, reference)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEarningExists
		}
		return fmt.Errorf("inserting earning: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (wallet_id, provider_id, booking_id, type, amount, status, reference, method, details)
		 VALUES ($1, $2, $3, 'commission', $4, 'completed', $5, '', '')`,
		walletID, providerID, bookingID, -commission, reference)
	if err != nil {
		return fmt.Errorf("inserting commission: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = balance + $1,
		     total_earnings = total_earnings + $1,
		     pending_balance = GREATEST(pending_balance - $2, 0),
		     updated_at = NOW()
		 WHERE id = $3`, net, gross, walletID)
	if err != nil {
		return fmt.Errorf("crediting wallet: %w", err)
	}

	return tx.Commit()
}

// CreateWithdrawal debits the wallet only when the available balance covers
// the amount, then records a pending withdrawal transaction.
func (r *repository) CreateWithdrawal(ctx context.Context, providerID int, amount int64, method, details, reference string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = balance - $1,
		     total_withdrawn = total_withdrawn + $1,
		     updated_at = NOW()
		 WHERE provider_id = $2 AND balance >= $1`, amount, providerID)
	if err != nil {
		return nil, fmt.Errorf("debiting wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking debit: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM wallets WHERE provider_id = $1)`, providerID); err != nil {
			return nil, fmt.Errorf("checking wallet: %w", err)
		}
		if !exists {
			return nil, ErrWalletNotFound
		}
		return nil, ErrInsufficientBalance
	}

	var walletID int
	if err := tx.GetContext(ctx, &walletID,
		`SELECT id FROM wallets WHERE provider_id = $1`, providerID); err != nil {
		return nil, fmt.Errorf("fetching wallet id: %w", err)
	}

	var wd Transaction
	err = tx.GetContext(ctx, &wd,
		`INSERT INTO transactions (wallet_id, provider_id, type, amount, status, reference, method, details)
		 VALUES ($1, $2, 'withdrawal', $3, 'pending', $4, $5, $6)
		 RETURNING `+txColumns,
		walletID, providerID, -amount, reference, method, details)
	if err != nil {
		return nil, fmt.Errorf("inserting withdrawal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing withdrawal: %w", err)
	}
	return &wd, nil
}

func (r *repository) ListTransactions(ctx context.Context, providerID int, txType string, limit, offset int) ([]Transaction, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM transactions WHERE provider_id = $1 AND ($2 = '' OR type = $2)`,
		providerID, txType)
	if err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	transactions := []Transaction{}
	err = r.db.SelectContext(ctx, &transactions,
		`SELECT `+txColumns+` FROM transactions
		 WHERE provider_id = $1 AND ($2 = '' OR type = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		providerID, txType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	return transactions, total, nil
}

func (r *repository) GetEarningsSummary(ctx context.Context, providerID int) (*EarningsSummary, error) {
	var s EarningsSummary
	err := r.db.GetContext(ctx, &s,
		`SELECT $1::int AS provider_id,
		        COALESCE(SUM(amount) FILTER (WHERE type = 'earning'), 0) AS total_earnings,
		        COALESCE(-SUM(amount) FILTER (WHERE type = 'commission'), 0) AS total_commission,
		        COUNT(*) FILTER (WHERE type = 'earning') AS earning_count
		 FROM transactions WHERE provider_id = $1`, providerID)
	if err != nil {
		return nil, fmt.Errorf("summarizing earnings: %w", err)
	}
	return &s, nil
}

func (r *repository) SetPendingBalance(ctx context.Context, providerID int, amount int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET pending_balance = $1, updated_at = NOW() WHERE provider_id = $2`,
		amount, providerID)
	if err != nil {
		return fmt.Errorf("updating pending balance: %w", err)
	}
	return nil
}

// DeleteTerminalOlderThan prunes old completed ledger rows per the retention
// policy. Pending withdrawals are never pruned.
func (r *repository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE status = 'completed' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning transactions: %w", err)
	}
	return res.RowsAffected()
}
