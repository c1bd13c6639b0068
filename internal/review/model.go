package review

import "time"

type Review struct {
	ID         int       `db:"id" json:"id"`
	BookingID  int       `db:"booking_id" json:"booking_id"`
	SeekerID   int       `db:"seeker_id" json:"seeker_id"`
	ProviderID int       `db:"provider_id" json:"provider_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type ReviewWithSeeker struct {
	Review
	SeekerName string `db:"seeker_name" json:"seeker_name"`
}

type ProviderStats struct {
	ProviderID    int     `db:"provider_id" json:"provider_id"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	CompletedJobs int     `db:"completed_jobs" json:"completed_jobs"`
}

type CreateRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"max=2000"`
}
