package provider

import "context"

type Repository interface {
	Create(ctx context.Context, userID int, req OnboardRequest) (*Provider, error)
	GetByID(ctx context.Context, id int) (*Provider, error)
	GetByUserID(ctx context.Context, userID int) (*Provider, error)
	ListApproved(ctx context.Context, category string) ([]ProviderWithUser, error)
	ListByStatus(ctx context.Context, status string) ([]ProviderWithUser, error)
	SetStatus(ctx context.Context, id int, status string) error
	SetAvailability(ctx context.Context, userID int, available bool) error
}
