package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const DeclineMessage = "Payment was declined. Please try a different payment method."

// ChargeRequest asks a gateway to capture Amount in Currency. Reference is the
// merchant order id and doubles as the idempotency key.
type ChargeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Reference   string
	Description string
}

// ChargeResult reports a completed charge attempt. A decline is a result, not an error;
// errors mean the gateway could not decide.
type ChargeResult struct {
	Success         bool
	Provider        string
	PaymentIntentID string
	FailureMessage  string
	ProcessedAt     time.Time
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

type AdapterConfig struct {
	Currency    string
	SuccessRate float64
	Latency     time.Duration
	// Rand returns a value in [0,1); nil selects the process source.
	Rand func() float64
}

type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (Gateway, error)
}

var (
	ErrProviderNotFound = errors.New("payment_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_payment_config")
	ErrInvalidAmount    = errors.New("invalid_amount")
)
