package wallet

import (
	"context"
	"time"
)

type Repository interface {
	GetOrCreateWallet(ctx context.Context, providerID int) (*Wallet, error)
	RecordEarning(ctx context.Context, providerID, bookingID int, gross, net, commission int64, reference string) error
	CreateWithdrawal(ctx context.Context, providerID int, amount int64, method, details, reference string) (*Transaction, error)
	ListTransactions(ctx context.Context, providerID int, txType string, limit, offset int) ([]Transaction, int, error)
	GetEarningsSummary(ctx context.Context, providerID int) (*EarningsSummary, error)
	SetPendingBalance(ctx context.Context, providerID int, amount int64) error
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
