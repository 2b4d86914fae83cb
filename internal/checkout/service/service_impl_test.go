package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/internal/checkout/domain"
	"github.com/nahomjim91/spice-marketplace/internal/checkout/repository"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	"github.com/nahomjim91/spice-marketplace/internal/observability/metrics"
	paymentdomain "github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeCart struct {
	state  cartdomain.CartState
	clears int
}

func (c *fakeCart) ID() string { return "shopper-1" }

func (c *fakeCart) State() cartdomain.CartState { return c.state }

func (c *fakeCart) ClearCart(context.Context) (cartdomain.CartState, error) {
	c.clears++
	c.state = cartdomain.EmptyState()
	return c.state, nil
}

type fakeGateway struct {
	result   paymentdomain.ChargeResult
	err      error
	requests []paymentdomain.ChargeRequest
}

func (g *fakeGateway) Charge(_ context.Context, req paymentdomain.ChargeRequest) (paymentdomain.ChargeResult, error) {
	g.requests = append(g.requests, req)
	return g.result, g.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.Order{}))
	return db
}

var placedAt = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, db *gorm.DB, gw paymentdomain.Gateway) *Service {
	t.Helper()
	return New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(placedAt),
		Gateway: gw,
		Repo:    repository.Provide(),
		Metrics: metrics.NewCartMetrics(prometheus.NewRegistry(), metrics.Config{}),
		Config:  config.Config{Payment: config.PaymentConfig{Currency: "USD"}},
	})
}

func cartWithGondar() *fakeCart {
	tr := cartdomain.NewTransitions(cartdomain.DefaultPricingRules(), nil)
	state := tr.AddItem(cartdomain.EmptyState(), cartdomain.LineItem{
		ID:       "berbere-gondar-1",
		Product:  cartdomain.Product{ID: "berbere-gondar", Name: "Single-Origin Berbere", Price: decimal.NewFromInt(45)},
		Quantity: 1,
		AddedAt:  placedAt.Add(-time.Hour),
	})
	return &fakeCart{state: state}
}

func validRequest() domain.Request {
	return domain.Request{Shipping: domain.ShippingInfo{
		FirstName: "Selam",
		LastName:  "Tesfay",
		Email:     "selam@example.com",
		Address:   "12 Harnet Ave",
		City:      "Asmara",
	}}
}

func TestCheckoutSuccessClearsCartOnce(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{result: paymentdomain.ChargeResult{Success: true, Provider: "simulated", PaymentIntentID: "pi_123"}}
	svc := newTestService(t, db, gw)
	cart := cartWithGondar()

	receipt, err := svc.Checkout(context.Background(), cart, validRequest())
	require.NoError(t, err)

	require.Len(t, gw.requests, 1)
	assert.True(t, decimal.RequireFromString("58.83").Equal(gw.requests[0].Amount))
	assert.Equal(t, "usd", gw.requests[0].Currency)
	assert.Equal(t, receipt.OrderID, gw.requests[0].Reference)

	assert.Equal(t, 1, cart.clears)
	assert.True(t, cart.state.IsEmpty())

	assert.Equal(t, "pi_123", receipt.PaymentIntentID)
	assert.True(t, decimal.RequireFromString("58.83").Equal(receipt.Amount))
	assert.Equal(t, 1, receipt.ItemCount)
	assert.Len(t, receipt.Items, 1)
	assert.Equal(t, "Thursday, October 22", receipt.EstimatedDelivery)

	order, err := svc.GetOrder(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "selam@example.com", order.Email)
	assert.Equal(t, "pi_123", order.PaymentIntentID)
	assert.True(t, decimal.RequireFromString("3.83").Equal(order.Tax))

	var shipping domain.ShippingInfo
	require.NoError(t, json.Unmarshal(order.ShippingInfo, &shipping))
	assert.Equal(t, "United States", shipping.Country)
}

func TestCheckoutDeclineKeepsCart(t *testing.T) {
	gw := &fakeGateway{result: paymentdomain.ChargeResult{Success: false, FailureMessage: paymentdomain.DeclineMessage}}
	svc := newTestService(t, setupTestDB(t), gw)
	cart := cartWithGondar()
	before := cart.state

	_, err := svc.Checkout(context.Background(), cart, validRequest())
	require.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.Contains(t, err.Error(), paymentdomain.DeclineMessage)

	assert.Equal(t, 0, cart.clears)
	assert.True(t, before.Equal(cart.state))
}

func TestCheckoutGatewayErrorKeepsCart(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway timeout")}
	svc := newTestService(t, nil, gw)
	cart := cartWithGondar()

	_, err := svc.Checkout(context.Background(), cart, validRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.Equal(t, 0, cart.clears)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(t, nil, gw)

	_, err := svc.Checkout(context.Background(), &fakeCart{state: cartdomain.EmptyState()}, validRequest())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, gw.requests)
}

func TestCheckoutValidatesShipping(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(t, nil, gw)

	req := validRequest()
	req.Shipping.Email = "not-an-email"
	_, err := svc.Checkout(context.Background(), cartWithGondar(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidShipping)

	req = validRequest()
	req.Shipping.Address = "   "
	_, err = svc.Checkout(context.Background(), cartWithGondar(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidShipping)
	assert.Empty(t, gw.requests)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := newTestService(t, setupTestDB(t), &fakeGateway{})

	_, err := svc.GetOrder(context.Background(), "01JAXXXXXXXXXXXXXXXXXXXXXX")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), "01HZY3Q0K8W9V6T5R4P3N2M1AB")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	noDB := newTestService(t, nil, &fakeGateway{})
	_, err = noDB.GetOrder(context.Background(), "01HZY3Q0K8W9V6T5R4P3N2M1AB")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
