package wallet

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWalletMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRows(providerID int, balance, pending int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "provider_id", "balance", "pending_balance", "total_earnings", "total_withdrawn", "currency", "created_at", "updated_at"}).
		AddRow(1, providerID, balance, pending, balance, 0, "XAF", now, now)
}

func TestGetOrCreateWallet(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, provider_id, balance, pending_balance")).
		WithArgs(7).
		WillReturnRows(walletRows(7, 22500, 0))

	w, err := repo.GetOrCreateWallet(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "XAF", w.Currency)
	assert.Equal(t, int64(22500), w.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordEarning(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM wallets WHERE provider_id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(1, 7, 42, int64(22500), "PAY-ref").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(1, 7, 42, int64(-2500), "PAY-ref").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(22500), int64(25000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordEarning(context.Background(), 7, 42, 25000, 22500, 2500, "PAY-ref")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordEarning_Duplicate(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM wallets WHERE provider_id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(1, 7, 42, int64(22500), "PAY-ref").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.RecordEarning(context.Background(), 7, 42, 25000, 22500, 2500, "PAY-ref")
	assert.ErrorIs(t, err, ErrEarningExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithdrawal_InsufficientBalance(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(999999), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.CreateWithdrawal(context.Background(), 7, 999999, "momo", "", "WD-x")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithdrawal(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(5000), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM wallets WHERE provider_id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(1, 7, int64(-5000), "WD-x", "momo", "677000000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "provider_id", "booking_id", "type", "amount", "status", "reference", "method", "details", "created_at"}).
			AddRow(9, 1, 7, nil, "withdrawal", -5000, "pending", "WD-x", "momo", "677000000", now))
	mock.ExpectCommit()

	wd, err := repo.CreateWithdrawal(context.Background(), 7, 5000, "momo", "677000000", "WD-x")
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), wd.Amount)
	assert.Equal(t, "pending", wd.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
