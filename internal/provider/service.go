package provider

import (
	"context"
	"errors"

	"homeserve/internal/auth"
	"homeserve/internal/user"
)

var ErrNotApprovable = errors.New("provider is not awaiting approval")

type Service interface {
	Onboard(ctx context.Context, userID int, req OnboardRequest) (*Provider, error)
	GetByUserID(ctx context.Context, userID int) (*Provider, error)
	ListApproved(ctx context.Context, category string) ([]ProviderWithUser, error)
	ListPending(ctx context.Context) ([]ProviderWithUser, error)
	Approve(ctx context.Context, providerID int) error
	Reject(ctx context.Context, providerID int) error
	SetAvailability(ctx context.Context, userID int, available bool) error
}

type service struct {
	repo     Repository
	userRepo user.Repository
}

func NewService(repo Repository, userRepo user.Repository) Service {
	return &service{repo: repo, userRepo: userRepo}
}

func (s *service) Onboard(ctx context.Context, userID int, req OnboardRequest) (*Provider, error) {
	return s.repo.Create(ctx, userID, req)
}

func (s *service) GetByUserID(ctx context.Context, userID int) (*Provider, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) ListApproved(ctx context.Context, category string) ([]ProviderWithUser, error) {
	return s.repo.ListApproved(ctx, category)
}

func (s *service) ListPending(ctx context.Context) ([]ProviderWithUser, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

// Approve flips the profile to approved and promotes the account role so the
// provider route group opens up for the user.
func (s *service) Approve(ctx context.Context, providerID int) error {
	p, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return err
	}
	if p.Status != StatusPending {
		return ErrNotApprovable
	}

	if err := s.repo.SetStatus(ctx, providerID, StatusApproved); err != nil {
		return err
	}

	return s.userRepo.UpdateRole(ctx, p.UserID, auth.RoleProvider)
}

func (s *service) Reject(ctx context.Context, providerID int) error {
	p, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return err
	}
	if p.Status != StatusPending {
		return ErrNotApprovable
	}

	return s.repo.SetStatus(ctx, providerID, StatusRejected)
}

func (s *service) SetAvailability(ctx context.Context, userID int, available bool) error {
	return s.repo.SetAvailability(ctx, userID, available)
}
