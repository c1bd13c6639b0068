package booking

import "time"

// Booking lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Payment statuses, owned by the payment module.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

type Booking struct {
	ID            int       `db:"id" json:"id"`
	SeekerID      int       `db:"seeker_id" json:"seeker_id"`
	ProviderID    *int      `db:"provider_id" json:"provider_id,omitempty"`
	Category      string    `db:"category" json:"category"`
	Description   string    `db:"description" json:"description"`
	Location      string    `db:"location" json:"location"`
	ScheduledAt   time.Time `db:"scheduled_at" json:"scheduled_at"`
	Hours         int       `db:"hours" json:"hours"`
	TotalAmount   int64     `db:"total_amount" json:"total_amount"`
	Status        string    `db:"status" json:"status"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type BookingWithSeeker struct {
	Booking
	SeekerName  string `db:"seeker_name" json:"seeker_name"`
	SeekerEmail string `db:"seeker_email" json:"seeker_email"`
}

type CreateRequest struct {
	Category    string    `json:"category" binding:"required,min=2,max=50"`
	Description string    `json:"description" binding:"max=2000"`
	Location    string    `json:"location" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Hours       int       `json:"hours" binding:"required,gte=1,lte=12"`
}

type AssignRequest struct {
	ProviderID int `json:"provider_id" binding:"required"`
}
