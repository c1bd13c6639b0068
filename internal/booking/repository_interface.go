package booking

import "context"

type Repository interface {
	Create(ctx context.Context, seekerID int, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	ListBySeeker(ctx context.Context, seekerID int) ([]Booking, error)
	ListByProvider(ctx context.Context, providerID int) ([]Booking, error)
	ListByStatus(ctx context.Context, status string) ([]BookingWithSeeker, error)
	AssignProvider(ctx context.Context, bookingID, providerID int, totalAmount int64) error
	TransitionStatus(ctx context.Context, bookingID int, from []string, to string) error
	SetPaymentStatus(ctx context.Context, bookingID int, paymentStatus string) error
	SumPendingEarnings(ctx context.Context, providerID int) (int64, error)
}
