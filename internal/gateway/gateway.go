// Package gateway adapts mobile money vendors behind a single Rail
// interface so the payment orchestrator stays vendor-agnostic.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"homeserve/internal/config"
)

const (
	RailMomo   = "momo"
	RailOrange = "orange"
)

// Status is the vendor-neutral outcome of a collection attempt.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

type CollectionRequest struct {
	Reference   string
	Amount      int64
	Currency    string
	PhoneNumber string
	Description string
	CallbackURL string
}

type CollectionResponse struct {
	VendorTransactionID string
	RawStatus           string
	// Raw is the vendor's response body as received, kept for audit.
	Raw []byte
}

type StatusResult struct {
	Status    Status
	RawStatus string
	Reason    string
}

// Rail is one mobile money vendor integration.
type Rail interface {
	Name() string
	RequestCollection(ctx context.Context, req CollectionRequest) (*CollectionResponse, error)
	// FetchStatus polls the vendor for a collection started earlier.
	// reference is our payment reference, vendorID the vendor's own
	// transaction id from RequestCollection.
	FetchStatus(ctx context.Context, reference, vendorID string) (*StatusResult, error)
}

// NewRails builds the configured vendor adapters keyed by rail name.
func NewRails(cfg *config.Config) map[string]Rail {
	client := &http.Client{Timeout: 30 * time.Second}
	return map[string]Rail{
		RailMomo:   NewMomoRail(cfg, client),
		RailOrange: NewOrangeRail(cfg, client),
	}
}

// NormalizeMomoStatus maps MTN MoMo statuses onto the neutral set. Anything
// unrecognized is treated as failed.
func NormalizeMomoStatus(raw string) Status {
	switch strings.ToUpper(raw) {
	case "SUCCESSFUL":
		return StatusSuccessful
	case "PENDING":
		return StatusPending
	case "FAILED":
		return StatusFailed
	default:
		return StatusFailed
	}
}

// NormalizeOrangeStatus maps Orange Money statuses, which are less uniform
// across API versions, onto the neutral set.
func NormalizeOrangeStatus(raw string) Status {
	switch strings.ToUpper(raw) {
	case "SUCCESS", "SUCCESSFUL":
		return StatusSuccessful
	case "PENDING", "INITIATED":
		return StatusPending
	case "CANCELLED":
		return StatusCancelled
	case "FAILED", "FAILURE", "EXPIRED":
		return StatusFailed
	default:
		return StatusFailed
	}
}

// NormalizeStatus dispatches on rail name.
func NormalizeStatus(rail, raw string) Status {
	if rail == RailOrange {
		return NormalizeOrangeStatus(raw)
	}
	return NormalizeMomoStatus(raw)
}
