package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homeserve/internal/logger"
	"homeserve/internal/metrics"
)

// PendingEarningsSource reports the gross value of work a provider has been
// assigned but not yet been paid out for. The booking repository implements
// it.
type PendingEarningsSource interface {
	SumPendingEarnings(ctx context.Context, providerID int) (int64, error)
}

type Service interface {
	Balance(ctx context.Context, providerID int) (*Wallet, error)
	ProcessEarning(ctx context.Context, providerID, bookingID int, gross int64, reference string) error
	Withdraw(ctx context.Context, providerID int, req WithdrawRequest) (*Transaction, error)
	Transactions(ctx context.Context, providerID int, txType string, page, limit int) ([]Transaction, int, error)
	EarningsSummary(ctx context.Context, providerID int) (*EarningsSummary, error)
	PruneOldTransactions(ctx context.Context, olderThan time.Duration) (int64, error)
}

type service struct {
	repo    Repository
	pending PendingEarningsSource
}

func NewService(repo Repository, pending PendingEarningsSource) Service {
	return &service{repo: repo, pending: pending}
}

// SplitCommission returns the provider's net credit and the platform's cut
// for a gross payment amount. Remainders from integer division stay with the
// provider.
func SplitCommission(gross int64) (net, commission int64) {
	commission = gross * CommissionRatePct / 100
	return gross - commission, commission
}

// Balance refreshes the wallet's pending balance from assigned work before
// returning it, so the figure reflects bookings confirmed since the last
// payout.
func (s *service) Balance(ctx context.Context, providerID int) (*Wallet, error) {
	pending, err := s.pending.SumPendingEarnings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("computing pending earnings: %w", err)
	}

	w, err := s.repo.GetOrCreateWallet(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if w.PendingBalance != pending {
		if err := s.repo.SetPendingBalance(ctx, providerID, pending); err != nil {
			return nil, err
		}
		w.PendingBalance = pending
	}
	return w, nil
}

// ProcessEarning splits a successful payment into the provider's net earning
// and the platform commission and credits the wallet. Calling it twice for
// the same booking is a no-op.
func (s *service) ProcessEarning(ctx context.Context, providerID, bookingID int, gross int64, reference string) error {
	if gross <= 0 {
		return fmt.Errorf("invalid gross amount %d", gross)
	}
	net, commission := SplitCommission(gross)

	err := s.repo.RecordEarning(ctx, providerID, bookingID, gross, net, commission, reference)
	if err != nil {
		if errors.Is(err, ErrEarningExists) {
			logger.Info("earning already recorded, skipping", "provider_id", providerID, "booking_id", bookingID)
			return nil
		}
		return err
	}

	metrics.RecordEarning(commission)
	logger.Info("earning credited",
		"provider_id", providerID, "booking_id", bookingID,
		"net", net, "commission", commission)
	return nil
}

func (s *service) Withdraw(ctx context.Context, providerID int, req WithdrawRequest) (*Transaction, error) {
	reference := "WD-" + uuid.NewString()
	wd, err := s.repo.CreateWithdrawal(ctx, providerID, req.Amount, req.Method, req.Details, reference)
	if err != nil {
		metrics.RecordWithdrawal("failed")
		return nil, err
	}
	metrics.RecordWithdrawal("success")
	logger.Info("withdrawal requested", "provider_id", providerID, "amount", req.Amount, "reference", reference)
	return wd, nil
}

func (s *service) Transactions(ctx context.Context, providerID int, txType string, page, limit int) ([]Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, providerID, txType, limit, (page-1)*limit)
}

func (s *service) EarningsSummary(ctx context.Context, providerID int) (*EarningsSummary, error) {
	return s.repo.GetEarningsSummary(ctx, providerID)
}

func (s *service) PruneOldTransactions(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteTerminalOlderThan(ctx, time.Now().Add(-olderThan))
}
