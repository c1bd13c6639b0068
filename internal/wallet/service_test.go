package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"homeserve/internal/logger"
)

type MockWalletRepo struct{ mock.Mock }

func (m *MockWalletRepo) GetOrCreateWallet(ctx context.Context, providerID int) (*Wallet, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wallet), args.Error(1)
}

func (m *MockWalletRepo) RecordEarning(ctx context.Context, providerID, bookingID int, gross, net, commission int64, reference string) error {
	return m.Called(ctx, providerID, bookingID, gross, net, commission, reference).Error(0)
}

func (m *MockWalletRepo) CreateWithdrawal(ctx context.Context, providerID int, amount int64, method, details, reference string) (*Transaction, error) {
	args := m.Called(ctx, providerID, amount, method, details, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockWalletRepo) ListTransactions(ctx context.Context, providerID int, txType string, limit, offset int) ([]Transaction, int, error) {
	args := m.Called(ctx, providerID, txType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Transaction), args.Int(1), args.Error(2)
}

func (m *MockWalletRepo) GetEarningsSummary(ctx context.Context, providerID int) (*EarningsSummary, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EarningsSummary), args.Error(1)
}

func (m *MockWalletRepo) SetPendingBalance(ctx context.Context, providerID int, amount int64) error {
	return m.Called(ctx, providerID, amount).Error(0)
}

func (m *MockWalletRepo) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockPendingSource struct{ mock.Mock }

func (m *MockPendingSource) SumPendingEarnings(ctx context.Context, providerID int) (int64, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo Repository, pending PendingEarningsSource) Service {
	logger.Init()
	return NewService(repo, pending)
}

func TestSplitCommission(t *testing.T) {
	tests := []struct {
		gross, net, commission int64
	}{
		{25000, 22500, 2500},
		{100, 90, 10},
		{15, 14, 1},
		{9, 9, 0},
	}
	for _, tt := range tests {
		net, commission := SplitCommission(tt.gross)
		assert.Equal(t, tt.net, net, "net for gross %d", tt.gross)
		assert.Equal(t, tt.commission, commission, "commission for gross %d", tt.gross)
		assert.Equal(t, tt.gross, net+commission)
	}
}

func TestProcessEarning_SplitsAndCredits(t *testing.T) {
	repo := new(MockWalletRepo)
	pending := new(MockPendingSource)
	svc := newTestService(repo, pending)

	repo.On("RecordEarning", mock.Anything, 7, 42, int64(25000), int64(22500), int64(2500), "PAY-ref").Return(nil)

	err := svc.ProcessEarning(context.Background(), 7, 42, 25000, "PAY-ref")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessEarning_DuplicateIsNoop(t *testing.T) {
	repo := new(MockWalletRepo)
	pending := new(MockPendingSource)
	svc := newTestService(repo, pending)

	repo.On("RecordEarning", mock.Anything, 7, 42, int64(25000), int64(22500), int64(2500), "PAY-ref").Return(ErrEarningExists)

	err := svc.ProcessEarning(context.Background(), 7, 42, 25000, "PAY-ref")
	assert.NoError(t, err)
}

func TestProcessEarning_RejectsNonPositiveGross(t *testing.T) {
	repo := new(MockWalletRepo)
	svc := newTestService(repo, new(MockPendingSource))

	err := svc.ProcessEarning(context.Background(), 7, 42, 0, "PAY-ref")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "RecordEarning")
}

func TestBalance_RefreshesPending(t *testing.T) {
	repo := new(MockWalletRepo)
	pending := new(MockPendingSource)
	svc := newTestService(repo, pending)

	pending.On("SumPendingEarnings", mock.Anything, 7).Return(int64(50000), nil)
	repo.On("GetOrCreateWallet", mock.Anything, 7).Return(&Wallet{ID: 1, ProviderID: 7, Balance: 22500, PendingBalance: 10000}, nil)
	repo.On("SetPendingBalance", mock.Anything, 7, int64(50000)).Return(nil)

	w, err := svc.Balance(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), w.PendingBalance)
	assert.Equal(t, int64(22500), w.Balance)
	repo.AssertExpectations(t)
}

func TestBalance_SkipsWriteWhenUnchanged(t *testing.T) {
	repo := new(MockWalletRepo)
	pending := new(MockPendingSource)
	svc := newTestService(repo, pending)

	pending.On("SumPendingEarnings", mock.Anything, 7).Return(int64(10000), nil)
	repo.On("GetOrCreateWallet", mock.Anything, 7).Return(&Wallet{ID: 1, ProviderID: 7, PendingBalance: 10000}, nil)

	_, err := svc.Balance(context.Background(), 7)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "SetPendingBalance")
}

func TestWithdraw_GeneratesReference(t *testing.T) {
	repo := new(MockWalletRepo)
	svc := newTestService(repo, new(MockPendingSource))

	repo.On("CreateWithdrawal", mock.Anything, 7, int64(5000), "momo", "677000000",
		mock.MatchedBy(func(ref string) bool { return len(ref) > 3 && ref[:3] == "WD-" })).
		Return(&Transaction{ID: 9, Type: TypeWithdrawal, Amount: -5000, Status: TxStatusPending}, nil)

	wd, err := svc.Withdraw(context.Background(), 7, WithdrawRequest{Amount: 5000, Method: "momo", Details: "677000000"})
	require.NoError(t, err)
	assert.Equal(t, TxStatusPending, wd.Status)
	repo.AssertExpectations(t)
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	repo := new(MockWalletRepo)
	svc := newTestService(repo, new(MockPendingSource))

	repo.On("CreateWithdrawal", mock.Anything, 7, int64(999999), "momo", "", mock.Anything).
		Return(nil, ErrInsufficientBalance)

	_, err := svc.Withdraw(context.Background(), 7, WithdrawRequest{Amount: 999999, Method: "momo"})
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
}

func TestTransactions_ClampsPaging(t *testing.T) {
	repo := new(MockWalletRepo)
	svc := newTestService(repo, new(MockPendingSource))

	repo.On("ListTransactions", mock.Anything, 7, "", 20, 0).Return([]Transaction{}, 0, nil)

	_, _, err := svc.Transactions(context.Background(), 7, "", 0, 500)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
