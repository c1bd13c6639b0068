package provider

import "time"

// Onboarding statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Provider struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Category    string    `db:"category" json:"category"`
	Bio         string    `db:"bio" json:"bio"`
	HourlyRate  int64     `db:"hourly_rate" json:"hourly_rate"`
	PayoutPhone string    `db:"payout_phone" json:"payout_phone"`
	Status      string    `db:"status" json:"status"`
	Available   bool      `db:"available" json:"available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ProviderWithUser struct {
	Provider
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

type OnboardRequest struct {
	Category    string `json:"category" binding:"required,min=2,max=50"`
	Bio         string `json:"bio" binding:"max=1000"`
	HourlyRate  int64  `json:"hourly_rate" binding:"required,gt=0"`
	PayoutPhone string `json:"payout_phone" binding:"required"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}
