package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"homeserve/internal/booking"
	"homeserve/internal/gateway"
	"homeserve/internal/logger"
	"homeserve/internal/metrics"
	"homeserve/internal/user"
)

var (
	ErrNotBookingSeeker   = errors.New("only the booking seeker may pay")
	ErrNoProviderAssigned = errors.New("booking has no assigned provider")
	ErrAlreadyPaid        = errors.New("booking is already paid")
	ErrAmountMismatch     = errors.New("amount does not match booking total")
	ErrUnknownRail        = errors.New("unknown payment rail")
	ErrNotCancellable     = errors.New("payment can no longer be cancelled")
	ErrNotPaymentOwner    = errors.New("payment belongs to another user")
	ErrMalformedPayload   = errors.New("webhook payload missing reference or status")
	ErrInitiationFailed   = errors.New("payment initiation failed")
)

// BookingService is the slice of the booking service the orchestrator
// needs.
type BookingService interface {
	GetByID(ctx context.Context, id int) (*booking.Booking, error)
	SetPaymentStatus(ctx context.Context, bookingID int, paymentStatus string) error
}

// EarningsLedger credits a provider for a collected payment. The wallet
// service implements it; the call is idempotent per booking.
type EarningsLedger interface {
	ProcessEarning(ctx context.Context, providerID, bookingID int, gross int64, reference string) error
}

// Notifier delivers payment outcome messages. Failures are logged, never
// surfaced to payers.
type Notifier interface {
	PaymentReceipt(ctx context.Context, to, name, reference string, amount int64) error
	PaymentFailed(ctx context.Context, to, name, reference, reason string) error
}

type Service interface {
	Initiate(ctx context.Context, payerID int, req InitiateRequest) (*Payment, error)
	Status(ctx context.Context, userID int, reference string) (*Payment, error)
	Cancel(ctx context.Context, payerID int, reference string) (*Payment, error)
	Reconcile(ctx context.Context, rail string, payload []byte, signature string) error
	History(ctx context.Context, payerID int, status string, page, limit int) ([]Payment, int, error)
	SweepExpired(ctx context.Context) (int, error)
	PruneOld(ctx context.Context) (int64, error)
}

// nowFunc is swapped in tests.
var nowFunc = time.Now

type service struct {
	repo     Repository
	rails    map[string]gateway.Rail
	bookings BookingService
	ledger   EarningsLedger
	users    user.Repository
	notifier Notifier

	callbackBaseURL string
}

func NewService(repo Repository, rails map[string]gateway.Rail, bookings BookingService, ledger EarningsLedger, users user.Repository, notifier Notifier, callbackBaseURL string) Service {
	return &service{
		repo:            repo,
		rails:           rails,
		bookings:        bookings,
		ledger:          ledger,
		users:           users,
		notifier:        notifier,
		callbackBaseURL: callbackBaseURL,
	}
}

// Initiate validates the booking, records a pending payment and asks the
// vendor to collect. The vendor accepting moves the payment to processing;
// a vendor rejection closes it as failed immediately.
func (s *service) Initiate(ctx context.Context, payerID int, req InitiateRequest) (*Payment, error) {
	rail, ok := s.rails[req.Rail]
	if !ok {
		return nil, ErrUnknownRail
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.SeekerID != payerID {
		return nil, ErrNotBookingSeeker
	}
	if b.ProviderID == nil {
		return nil, ErrNoProviderAssigned
	}
	if b.PaymentStatus == booking.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if req.Amount != b.TotalAmount {
		return nil, fmt.Errorf("%w: booking total is %d", ErrAmountMismatch, b.TotalAmount)
	}

	p, err := s.repo.Create(ctx, &Payment{
		Reference:   "PAY-" + uuid.NewString(),
		BookingID:   b.ID,
		PayerID:     payerID,
		ProviderID:  *b.ProviderID,
		Rail:        req.Rail,
		Amount:      req.Amount,
		Currency:    "XAF",
		PhoneNumber: req.PhoneNumber,
		ExpiresAt:   nowFunc().Add(ExpiryWindow),
	})
	if err != nil {
		return nil, err
	}

	resp, err := rail.RequestCollection(ctx, gateway.CollectionRequest{
		Reference:   p.Reference,
		Amount:      p.Amount,
		Currency:    p.Currency,
		PhoneNumber: p.PhoneNumber,
		Description: fmt.Sprintf("Booking #%d", b.ID),
		CallbackURL: s.callbackBaseURL + "/api/v1/payments/webhook/" + req.Rail,
	})
	if err != nil {
		reason := err.Error()
		if _, markErr := s.repo.MarkFailed(ctx, p.Reference, reason); markErr != nil {
			logger.Error("closing rejected payment", "reference", p.Reference, "error", markErr)
		}
		metrics.RecordPaymentInitiated(req.Rail, "failed")
		logger.Error("payment initiation failed", "reference", p.Reference, "rail", req.Rail, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInitiationFailed, reason)
	}

	if _, err := s.repo.MarkProcessing(ctx, p.Reference, resp.VendorTransactionID, resp.Raw); err != nil {
		return nil, err
	}
	p.Status = StatusProcessing
	p.VendorTransactionID = resp.VendorTransactionID
	p.VendorMetadata = resp.Raw

	metrics.RecordPaymentInitiated(req.Rail, "success")
	logger.Info("payment initiated", "reference", p.Reference, "rail", req.Rail, "booking_id", b.ID, "amount", p.Amount)
	return p, nil
}

func (s *service) Status(ctx context.Context, userID int, reference string) (*Payment, error) {
	p, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p.PayerID != userID {
		return nil, ErrNotPaymentOwner
	}
	return p, nil
}

// Cancel closes an in-flight payment at the payer's request. A payment the
// vendor already settled cannot be cancelled.
func (s *service) Cancel(ctx context.Context, payerID int, reference string) (*Payment, error) {
	p, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p.PayerID != payerID {
		return nil, ErrNotPaymentOwner
	}

	ok, err := s.repo.MarkCancelled(ctx, reference, payerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCancellable
	}

	logger.Info("payment cancelled", "reference", reference, "payer_id", payerID)
	return s.repo.GetByReference(ctx, reference)
}

// Reconcile applies a vendor webhook to the stored payment. The transition
// is a conditional update, so a replayed or raced webhook becomes a logged
// no-op rather than a double credit. The raw payload and its signature
// header are stored on the payment row for audit.
func (s *service) Reconcile(ctx context.Context, rail string, payload []byte, signature string) error {
	reference, rawStatus, reason := extractWebhookFields(payload)
	if reference == "" || rawStatus == "" {
		return ErrMalformedPayload
	}

	p, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}

	if err := s.repo.RecordVendorPayload(ctx, reference, webhookAudit(payload, signature)); err != nil {
		logger.Error("recording webhook payload", "reference", reference, "rail", rail, "error", err)
	}

	status := gateway.NormalizeStatus(rail, rawStatus)
	switch status {
	case gateway.StatusSuccessful:
		ok, err := s.repo.MarkSuccessful(ctx, reference)
		if err != nil {
			return err
		}
		if !ok {
			metrics.RecordWebhookReplay(rail)
			logger.Info("webhook replay ignored", "reference", reference, "rail", rail, "status", p.Status)
			return nil
		}
		return s.settle(ctx, p)

	case gateway.StatusFailed, gateway.StatusCancelled:
		if reason == "" {
			reason = "collection " + string(status)
		}
		ok, err := s.repo.MarkFailed(ctx, reference, reason)
		if err != nil {
			return err
		}
		if !ok {
			metrics.RecordWebhookReplay(rail)
			logger.Info("webhook replay ignored", "reference", reference, "rail", rail, "status", p.Status)
			return nil
		}
		metrics.RecordReconciliation(rail, StatusFailed)
		logger.Info("payment failed", "reference", reference, "rail", rail, "reason", reason)
		s.notifyFailure(ctx, p, reason)
		return nil

	default:
		logger.Info("webhook reported pending", "reference", reference, "rail", rail)
		return nil
	}
}

// settle runs the success side effects after the one winning transition.
func (s *service) settle(ctx context.Context, p *Payment) error {
	if err := s.bookings.SetPaymentStatus(ctx, p.BookingID, booking.PaymentStatusPaid); err != nil {
		logger.Error("marking booking paid", "reference", p.Reference, "booking_id", p.BookingID, "error", err)
	}
	if err := s.ledger.ProcessEarning(ctx, p.ProviderID, p.BookingID, p.Amount, p.Reference); err != nil {
		logger.Error("crediting earning", "reference", p.Reference, "provider_id", p.ProviderID, "error", err)
		return err
	}

	metrics.RecordReconciliation(p.Rail, StatusSuccessful)
	logger.Info("payment settled", "reference", p.Reference, "rail", p.Rail, "amount", p.Amount)

	if payer, err := s.users.FindByID(ctx, p.PayerID); err == nil {
		if err := s.notifier.PaymentReceipt(ctx, payer.Email, payer.Name, p.Reference, p.Amount); err != nil {
			logger.Error("queueing payment receipt", "reference", p.Reference, "error", err)
		}
	}
	return nil
}

func (s *service) notifyFailure(ctx context.Context, p *Payment, reason string) {
	payer, err := s.users.FindByID(ctx, p.PayerID)
	if err != nil {
		return
	}
	if err := s.notifier.PaymentFailed(ctx, payer.Email, payer.Name, p.Reference, reason); err != nil {
		logger.Error("queueing payment failure notice", "reference", p.Reference, "error", err)
	}
}

func (s *service) History(ctx context.Context, payerID int, status string, page, limit int) ([]Payment, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByPayer(ctx, payerID, status, limit, (page-1)*limit)
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.SweepExpired(ctx)
	if err != nil {
		return 0, err
	}
	if len(expired) > 0 {
		metrics.RecordExpiredPayments(len(expired))
		for _, p := range expired {
			logger.Info("payment expired", "reference", p.Reference, "rail", p.Rail, "booking_id", p.BookingID)
		}
	}
	return len(expired), nil
}

func (s *service) PruneOld(ctx context.Context) (int64, error) {
	return s.repo.DeleteTerminalOlderThan(ctx, nowFunc().Add(-RetentionWindow))
}

// webhookAudit wraps the raw vendor payload with the signature header it
// arrived under, so the stored metadata is self-contained. The payload has
// already passed gjson validation when this runs.
func webhookAudit(payload []byte, signature string) []byte {
	if signature == "" {
		return payload
	}
	return []byte(fmt.Sprintf(`{"signature":%q,"payload":%s}`, signature, payload))
}

// extractWebhookFields pulls the payment reference, raw status string and
// optional failure reason out of a vendor payload. Field names differ per
// vendor so several paths are tried.
func extractWebhookFields(payload []byte) (reference, status, reason string) {
	if !gjson.ValidBytes(payload) {
		return "", "", ""
	}
	for _, path := range []string{"externalId", "external_id", "order_id", "reference"} {
		if v := gjson.GetBytes(payload, path); v.Exists() && v.String() != "" {
			reference = v.String()
			break
		}
	}
	status = gjson.GetBytes(payload, "status").String()
	for _, path := range []string{"reason.message", "reason", "message"} {
		if v := gjson.GetBytes(payload, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			reason = v.String()
			break
		}
	}
	return reference, status, reason
}
