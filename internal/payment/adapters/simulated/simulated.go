package simulated

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"github.com/oklog/ulid/v2"
)

const providerName = "simulated"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return providerName
}

func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.Gateway, error) {
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 || cfg.Latency < 0 {
		return nil, domain.ErrInvalidConfig
	}
	roll := cfg.Rand
	if roll == nil {
		roll = rand.Float64
	}
	return &Adapter{
		successRate: cfg.SuccessRate,
		latency:     cfg.Latency,
		roll:        roll,
	}, nil
}

// Adapter approves a configurable share of charges after an optional delay.
type Adapter struct {
	successRate float64
	latency     time.Duration
	roll        func() float64
}

func (a *Adapter) Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeResult, error) {
	if !req.Amount.IsPositive() {
		return domain.ChargeResult{}, domain.ErrInvalidAmount
	}

	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.ChargeResult{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.ChargeResult{}, err
	}

	result := domain.ChargeResult{
		Provider:        providerName,
		PaymentIntentID: "pi_" + strings.ToLower(ulid.Make().String()),
		ProcessedAt:     time.Now().UTC(),
	}
	if a.roll() < a.successRate {
		result.Success = true
		return result, nil
	}
	result.FailureMessage = domain.DeclineMessage
	return result, nil
}
