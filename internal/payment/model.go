package payment

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Payment lifecycle. A payment is created pending, moves to processing once
// the vendor accepts the collection, and lands in exactly one terminal
// state. Terminal states are absorbing.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusExpired    = "expired"
)

// ExpiryWindow is how long a collection attempt may stay in flight before
// the sweep closes it.
const ExpiryWindow = 15 * time.Minute

// ExpiredReason is the failure reason recorded on payments the sweep closes.
const ExpiredReason = "payment approval window elapsed"

// RetentionWindow is how long terminal payments are kept before cleanup.
const RetentionWindow = 30 * 24 * time.Hour

type Payment struct {
	ID                  int            `db:"id" json:"id"`
	Reference           string         `db:"reference" json:"reference"`
	BookingID           int            `db:"booking_id" json:"booking_id"`
	PayerID             int            `db:"payer_id" json:"payer_id"`
	ProviderID          int            `db:"provider_id" json:"provider_id"`
	Rail                string         `db:"rail" json:"rail"`
	Amount              int64          `db:"amount" json:"amount"`
	Currency            string         `db:"currency" json:"currency"`
	PhoneNumber         string         `db:"phone_number" json:"phone_number"`
	Status              string         `db:"status" json:"status"`
	FailureReason       string         `db:"failure_reason" json:"failure_reason,omitempty"`
	VendorTransactionID string         `db:"vendor_transaction_id" json:"vendor_transaction_id,omitempty"`
	VendorMetadata      types.JSONText `db:"vendor_metadata" json:"vendor_metadata,omitempty"`
	ExpiresAt           time.Time      `db:"expires_at" json:"expires_at"`
	ProcessedAt         *time.Time     `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the status can never change again.
func IsTerminal(status string) bool {
	switch status {
	case StatusSuccessful, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// InitiateResponse carries the created payment plus how many seconds the
// payer has to approve the collection on their handset.
type InitiateResponse struct {
	Payment *Payment `json:"payment"`
	Timeout int      `json:"timeout"`
}

type InitiateRequest struct {
	BookingID   int    `json:"booking_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Rail        string `json:"rail" binding:"required,oneof=momo orange"`
	PhoneNumber string `json:"phone_number" binding:"required,min=9,max=15"`
}
