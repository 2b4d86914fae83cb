package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	cartstore "github.com/nahomjim91/spice-marketplace/internal/cart/store"
	"github.com/nahomjim91/spice-marketplace/internal/checkout/domain"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	"github.com/nahomjim91/spice-marketplace/internal/money"
	"github.com/nahomjim91/spice-marketplace/internal/observability/metrics"
	paymentdomain "github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"github.com/nahomjim91/spice-marketplace/internal/ratelimit"
	"github.com/nahomjim91/spice-marketplace/pkg/log/ctxlogger"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cart is the part of a cart session checkout needs. Callers must hold the
// session exclusively for the whole call.
type Cart interface {
	ID() string
	State() cartdomain.CartState
	ClearCart(ctx context.Context) (cartdomain.CartState, error)
}

type Params struct {
	fx.In

	DB      *gorm.DB `optional:"true"`
	Log     *zap.Logger
	Clock   clock.Clock
	Gateway paymentdomain.Gateway
	Repo    domain.Repository
	Limiter *ratelimit.CheckoutLimiter `optional:"true"`
	Metrics *metrics.CartMetrics       `optional:"true"`
	Config  config.Config
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	gateway  paymentdomain.Gateway
	repo     domain.Repository
	limiter  *ratelimit.CheckoutLimiter
	metrics  *metrics.CartMetrics
	currency string
}

func New(p Params) *Service {
	currency := strings.ToLower(strings.TrimSpace(p.Config.Payment.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("checkout.service"),
		clock:    p.Clock,
		gateway:  p.Gateway,
		repo:     p.Repo,
		limiter:  p.Limiter,
		metrics:  p.Metrics,
		currency: currency,
	}
}

// Checkout charges the cart's grand total and empties the cart only when the
// charge succeeds. A decline leaves the cart as it was.
func (s *Service) Checkout(ctx context.Context, cart Cart, req domain.Request) (*domain.Receipt, error) {
	ctx = ctxlogger.ContextWithSessionID(ctx, cart.ID())
	log := ctxlogger.WithContext(ctx, s.log)

	shipping, err := normalizeShipping(req.Shipping)
	if err != nil {
		return nil, err
	}

	state := cart.State()
	if state.IsEmpty() {
		s.metrics.ObserveCheckout(metrics.CheckoutResultEmpty, 0)
		return nil, domain.ErrEmptyCart
	}

	limit, err := s.limiter.Allow(ctx, cart.ID())
	if err != nil {
		// The limiter failing open keeps checkout available when redis is down.
		log.Warn("checkout rate limit unavailable", zap.Error(err))
	} else if !limit.Allowed {
		return nil, domain.ErrTooManyAttempts
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}

	orderID := ulid.Make().String()
	result, err := s.gateway.Charge(ctx, paymentdomain.ChargeRequest{
		Amount:      state.GrandTotal,
		Currency:    currency,
		Reference:   orderID,
		Description: fmt.Sprintf("Spice marketplace order %s", orderID),
	})
	if err != nil {
		s.metrics.ObserveCheckout(metrics.CheckoutResultError, 0)
		log.Error("payment gateway failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("charge order %s: %w", orderID, err)
	}
	if !result.Success {
		s.metrics.ObserveCheckout(metrics.CheckoutResultDeclined, 0)
		log.Info("payment declined", zap.String("order_id", orderID), zap.String("payment_intent_id", result.PaymentIntentID))
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, result.FailureMessage)
	}

	placedAt := s.clock.Now()
	s.recordOrder(ctx, log, orderID, cart.ID(), currency, shipping, state, result, placedAt)

	if _, err := cart.ClearCart(ctx); err != nil {
		// The charge went through; the receipt still stands.
		log.Error("clear cart after payment", zap.String("order_id", orderID), zap.Error(err))
	}
	s.metrics.ObserveCheckout(metrics.CheckoutResultSucceeded, money.Float(state.GrandTotal))

	log.Info("order placed",
		zap.String("order_id", orderID),
		zap.String("payment_intent_id", result.PaymentIntentID),
		zap.String("amount", state.GrandTotal.StringFixed(2)),
		zap.Int("item_count", state.ItemCount),
	)

	return &domain.Receipt{
		OrderID:           orderID,
		PaymentIntentID:   result.PaymentIntentID,
		Amount:            state.GrandTotal,
		Currency:          currency,
		ItemCount:         state.ItemCount,
		Items:             state.Items,
		Totals:            state.Totals,
		EstimatedDelivery: money.EstimatedDelivery(placedAt),
		PlacedAt:          placedAt,
	}, nil
}

// GetOrder returns a recorded order. Without a database nothing is recorded.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" || s.db == nil {
		return nil, domain.ErrOrderNotFound
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, domain.ErrOrderNotFound
	}
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) recordOrder(ctx context.Context, log *zap.Logger, orderID, sessionID, currency string, shipping domain.ShippingInfo, state cartdomain.CartState, result paymentdomain.ChargeResult, placedAt time.Time) {
	if s.db == nil {
		return
	}

	cartBlob, err := cartstore.Encode(state)
	if err != nil {
		log.Error("encode order cart", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	shippingBlob, err := json.Marshal(shipping)
	if err != nil {
		log.Error("encode order shipping", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	order := &domain.Order{
		ID:              orderID,
		SessionID:       sessionID,
		Email:           shipping.Email,
		Provider:        result.Provider,
		PaymentIntentID: result.PaymentIntentID,
		Currency:        currency,
		ItemCount:       state.ItemCount,
		Subtotal:        state.Subtotal,
		Shipping:        state.Shipping,
		Tax:             state.Tax,
		GrandTotal:      state.GrandTotal,
		Cart:            datatypes.JSON(cartBlob),
		ShippingInfo:    datatypes.JSON(shippingBlob),
		CreatedAt:       placedAt,
	}
	if err := s.repo.Insert(ctx, s.db, order); err != nil {
		log.Error("record order", zap.String("order_id", orderID), zap.Error(err))
	}
}

func normalizeShipping(in domain.ShippingInfo) (domain.ShippingInfo, error) {
	out := domain.ShippingInfo{
		FirstName:            strings.TrimSpace(in.FirstName),
		LastName:             strings.TrimSpace(in.LastName),
		Email:                strings.TrimSpace(in.Email),
		Phone:                strings.TrimSpace(in.Phone),
		Address:              strings.TrimSpace(in.Address),
		City:                 strings.TrimSpace(in.City),
		State:                strings.TrimSpace(in.State),
		ZipCode:              strings.TrimSpace(in.ZipCode),
		Country:              strings.TrimSpace(in.Country),
		DeliveryInstructions: strings.TrimSpace(in.DeliveryInstructions),
	}
	if out.FirstName == "" || out.LastName == "" || out.Address == "" {
		return domain.ShippingInfo{}, domain.ErrInvalidShipping
	}
	if _, err := mail.ParseAddress(out.Email); err != nil {
		return domain.ShippingInfo{}, domain.ErrInvalidShipping
	}
	if out.Country == "" {
		out.Country = "United States"
	}
	return out, nil
}
