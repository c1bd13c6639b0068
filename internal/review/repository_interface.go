package review

import "context"

type Repository interface {
	Create(ctx context.Context, bookingID, seekerID, providerID, rating int, comment string) (*Review, error)
	ListByProvider(ctx context.Context, providerID, limit, offset int) ([]ReviewWithSeeker, error)
	GetProviderStats(ctx context.Context, providerID int) (*ProviderStats, error)
}
