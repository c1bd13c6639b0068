package wallet

import "time"

// Transaction types. Commission amounts are recorded negative.
const (
	TypeEarning    = "earning"
	TypeCommission = "commission"
	TypeWithdrawal = "withdrawal"
)

const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
)

// CommissionRatePct is the platform's cut of every successful payment.
const CommissionRatePct = 10

type Wallet struct {
	ID             int       `db:"id" json:"id"`
	ProviderID     int       `db:"provider_id" json:"provider_id"`
	Balance        int64     `db:"balance" json:"balance"`
	PendingBalance int64     `db:"pending_balance" json:"pending_balance"`
	TotalEarnings  int64     `db:"total_earnings" json:"total_earnings"`
	TotalWithdrawn int64     `db:"total_withdrawn" json:"total_withdrawn"`
	Currency       string    `db:"currency" json:"currency"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID         int       `db:"id" json:"id"`
	WalletID   int       `db:"wallet_id" json:"wallet_id"`
	ProviderID int       `db:"provider_id" json:"provider_id"`
	BookingID  *int      `db:"booking_id" json:"booking_id,omitempty"`
	Type       string    `db:"type" json:"type"`
	Amount     int64     `db:"amount" json:"amount"`
	Status     string    `db:"status" json:"status"`
	Reference  string    `db:"reference" json:"reference"`
	Method     string    `db:"method" json:"method"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type EarningsSummary struct {
	ProviderID      int   `db:"provider_id" json:"provider_id"`
	TotalEarnings   int64 `db:"total_earnings" json:"total_earnings"`
	TotalCommission int64 `db:"total_commission" json:"total_commission"`
	EarningCount    int   `db:"earning_count" json:"earning_count"`
}

type WithdrawRequest struct {
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	Method  string `json:"method" binding:"required,oneof=momo orange bank"`
	Details string `json:"details" binding:"max=500"`
}
