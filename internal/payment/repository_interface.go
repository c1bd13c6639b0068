package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	// Mark* transitions are conditional updates. They return false when the
	// payment was not in an eligible state, which callers treat as a replay
	// or a lost race, never as corruption.
	MarkProcessing(ctx context.Context, reference, vendorID string, metadata []byte) (bool, error)
	// RecordVendorPayload stores the latest raw vendor payload for audit.
	// It is unconditional and never changes status.
	RecordVendorPayload(ctx context.Context, reference string, metadata []byte) error
	MarkSuccessful(ctx context.Context, reference string) (bool, error)
	MarkFailed(ctx context.Context, reference, reason string) (bool, error)
	MarkCancelled(ctx context.Context, reference string, payerID int) (bool, error)
	SweepExpired(ctx context.Context) ([]Payment, error)
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	ListByPayer(ctx context.Context, payerID int, status string, limit, offset int) ([]Payment, int, error)
}
