package simulated

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRoll(v float64) func() float64 {
	return func() float64 { return v }
}

func TestChargeApprovesBelowSuccessRate(t *testing.T) {
	gw, err := NewFactory().NewAdapter(domain.AdapterConfig{SuccessRate: 0.95, Rand: fixedRoll(0.5)})
	require.NoError(t, err)

	res, err := gw.Charge(context.Background(), domain.ChargeRequest{Amount: decimal.RequireFromString("58.83"), Currency: "usd"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.PaymentIntentID, "pi_"))
	assert.Empty(t, res.FailureMessage)
}

func TestChargeDeclinesAtOrAboveSuccessRate(t *testing.T) {
	gw, err := NewFactory().NewAdapter(domain.AdapterConfig{SuccessRate: 0.95, Rand: fixedRoll(0.95)})
	require.NoError(t, err)

	res, err := gw.Charge(context.Background(), domain.ChargeRequest{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.DeclineMessage, res.FailureMessage)
}

func TestChargeRejectsNonPositiveAmount(t *testing.T) {
	gw, err := NewFactory().NewAdapter(domain.AdapterConfig{SuccessRate: 1})
	require.NoError(t, err)

	_, err = gw.Charge(context.Background(), domain.ChargeRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestChargeHonoursContextDuringLatency(t *testing.T) {
	gw, err := NewFactory().NewAdapter(domain.AdapterConfig{SuccessRate: 1, Latency: time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gw.Charge(ctx, domain.ChargeRequest{Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewAdapterValidatesConfig(t *testing.T) {
	_, err := NewFactory().NewAdapter(domain.AdapterConfig{SuccessRate: 1.5})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
