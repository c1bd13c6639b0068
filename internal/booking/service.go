package booking

import (
	"context"
	"errors"
	"time"

	"homeserve/internal/logger"
	"homeserve/internal/metrics"
	"homeserve/internal/provider"
	"homeserve/internal/user"
)

var (
	ErrNotBookingSeeker    = errors.New("only the booking seeker may do this")
	ErrNotBookingProvider  = errors.New("only the assigned provider may do this")
	ErrPastSchedule        = errors.New("cannot book a time in the past")
	ErrProviderUnavailable = errors.New("provider is not approved or not available")
)

// Notifier is the narrow slice of the notification service this package needs.
type Notifier interface {
	BookingAssigned(ctx context.Context, to, name string, bookingID int, category string) error
}

type Service interface {
	Create(ctx context.Context, seekerID int, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	ListBySeeker(ctx context.Context, seekerID int) ([]Booking, error)
	ListForProviderUser(ctx context.Context, userID int) ([]Booking, error)
	ListByStatus(ctx context.Context, status string) ([]BookingWithSeeker, error)
	Assign(ctx context.Context, bookingID, providerID int) (*Booking, error)
	Accept(ctx context.Context, userID, bookingID int) error
	Start(ctx context.Context, userID, bookingID int) error
	Complete(ctx context.Context, userID, bookingID int) error
	Cancel(ctx context.Context, seekerID, bookingID int) error
	SetPaymentStatus(ctx context.Context, bookingID int, paymentStatus string) error
}

type service struct {
	repo         Repository
	providerRepo provider.Repository
	userRepo     user.Repository
	notifier     Notifier
}

func NewService(repo Repository, providerRepo provider.Repository, userRepo user.Repository, notifier Notifier) Service {
	return &service{
		repo:         repo,
		providerRepo: providerRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

func (s *service) Create(ctx context.Context, seekerID int, req CreateRequest) (*Booking, error) {
	if req.ScheduledAt.Before(time.Now()) {
		return nil, ErrPastSchedule
	}

	b, err := s.repo.Create(ctx, seekerID, req)
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(b.Category)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListBySeeker(ctx context.Context, seekerID int) ([]Booking, error) {
	return s.repo.ListBySeeker(ctx, seekerID)
}

func (s *service) ListForProviderUser(ctx context.Context, userID int) ([]Booking, error) {
	p, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProvider(ctx, p.ID)
}

func (s *service) ListByStatus(ctx context.Context, status string) ([]BookingWithSeeker, error) {
	return s.repo.ListByStatus(ctx, status)
}

// Assign gives a pending booking to an approved, available provider and fixes
// the total amount from the provider's hourly rate.
func (s *service) Assign(ctx context.Context, bookingID, providerID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	p, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if p.Status != provider.StatusApproved || !p.Available {
		return nil, ErrProviderUnavailable
	}

	total := p.HourlyRate * int64(b.Hours)
	if err := s.repo.AssignProvider(ctx, bookingID, providerID, total); err != nil {
		return nil, err
	}

	metrics.RecordAssignment()

	if providerUser, err := s.userRepo.FindByID(ctx, p.UserID); err == nil {
		if err := s.notifier.BookingAssigned(ctx, providerUser.Email, providerUser.Name, bookingID, b.Category); err != nil {
			logger.Error("failed to queue assignment notification", "booking_id", bookingID, "error", err)
		}
	}

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) Accept(ctx context.Context, userID, bookingID int) error {
	if err := s.checkAssignedProvider(ctx, userID, bookingID); err != nil {
		return err
	}
	return s.repo.TransitionStatus(ctx, bookingID, []string{StatusAssigned}, StatusConfirmed)
}

func (s *service) Start(ctx context.Context, userID, bookingID int) error {
	if err := s.checkAssignedProvider(ctx, userID, bookingID); err != nil {
		return err
	}
	return s.repo.TransitionStatus(ctx, bookingID, []string{StatusConfirmed}, StatusInProgress)
}

func (s *service) Complete(ctx context.Context, userID, bookingID int) error {
	if err := s.checkAssignedProvider(ctx, userID, bookingID); err != nil {
		return err
	}
	return s.repo.TransitionStatus(ctx, bookingID, []string{StatusInProgress}, StatusCompleted)
}

func (s *service) Cancel(ctx context.Context, seekerID, bookingID int) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.SeekerID != seekerID {
		return ErrNotBookingSeeker
	}

	return s.repo.TransitionStatus(ctx, bookingID, []string{StatusPending, StatusAssigned}, StatusCancelled)
}

func (s *service) SetPaymentStatus(ctx context.Context, bookingID int, paymentStatus string) error {
	return s.repo.SetPaymentStatus(ctx, bookingID, paymentStatus)
}

func (s *service) checkAssignedProvider(ctx context.Context, userID, bookingID int) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	p, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return ErrNotBookingProvider
	}

	if b.ProviderID == nil || *b.ProviderID != p.ID {
		return ErrNotBookingProvider
	}

	return nil
}
