package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/internal/cart/store"
	catalogdomain "github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	"github.com/nahomjim91/spice-marketplace/internal/money"
	"github.com/nahomjim91/spice-marketplace/internal/observability/metrics"
	"github.com/nahomjim91/spice-marketplace/pkg/log/ctxlogger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Store   domain.Store
	Catalog catalogdomain.Service
	Pricing *config.PricingHolder
	Metrics *metrics.CartMetrics `optional:"true"`
	Config  config.Config
}

// Engine owns the collaborators every cart session shares.
type Engine struct {
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	store      domain.Store
	catalog    catalogdomain.Service
	pricing    *config.PricingHolder
	metrics    *metrics.CartMetrics
	merge      domain.MergePolicy
	storageKey string
}

func New(p Params) *Engine {
	key := strings.TrimSpace(p.Config.Cart.StorageKey)
	if key == "" {
		key = config.DefaultStorageKey
	}
	pricing := p.Pricing
	if pricing == nil {
		pricing = config.NewStaticPricingHolder(config.DefaultPricingConfig())
	}
	return &Engine{
		log:        p.Log.Named("cart.engine"),
		clock:      p.Clock,
		genID:      p.GenID,
		store:      p.Store,
		catalog:    p.Catalog,
		pricing:    pricing,
		metrics:    p.Metrics,
		merge:      mergePolicy(p.Config.Cart.MergePolicy),
		storageKey: key,
	}
}

func mergePolicy(name string) domain.MergePolicy {
	if name == config.MergePolicyProductCustomizations {
		return domain.MergeByProductAndCustomizations
	}
	return domain.MergeByProductID
}

// Rules converts the live pricing configuration; a reload is picked up by the next transition.
func (e *Engine) Rules() domain.PricingRules {
	cfg := e.pricing.Get()
	return domain.PricingRules{
		FreeShippingThreshold: money.FromFloat(cfg.FreeShippingThreshold),
		LuxuryPriceThreshold:  money.FromFloat(cfg.LuxuryPriceThreshold),
		LuxuryShipping:        money.FromFloat(cfg.LuxuryShipping),
		StandardShipping:      money.FromFloat(cfg.StandardShipping),
		TaxRate:               money.FromFloat(cfg.TaxRate),
	}
}

func (e *Engine) transitions() domain.Transitions {
	return domain.NewTransitions(e.Rules(), e.merge)
}

// key maps a session onto its snapshot key. The blank session is the single-shopper
// cart and uses the bare storage key.
func (e *Engine) key(sessionID string) string {
	if sessionID == "" {
		return e.storageKey
	}
	return e.storageKey + ":" + sessionID
}

// Open builds the owned state for sessionID, seeded from the persisted snapshot.
func (e *Engine) Open(ctx context.Context, sessionID string) *Session {
	sessionID = strings.TrimSpace(sessionID)
	s := &Session{
		id:     sessionID,
		key:    e.key(sessionID),
		engine: e,
		state:  domain.EmptyState(),
	}
	s.notified = sync.NewCond(&s.notifyMu)
	s.state = e.load(ctxlogger.ContextWithSessionID(ctx, sessionID), s.key)
	return s
}

func (e *Engine) load(ctx context.Context, key string) domain.CartState {
	log := ctxlogger.WithContext(ctx, e.log)

	blob, found, err := e.store.Load(ctx, key)
	if err != nil {
		e.metrics.IncPersistenceFailure(metrics.OperationLoad)
		log.Warn("cart snapshot unreadable, starting empty", zap.String("key", key), zap.Error(err))
		return domain.EmptyState()
	}
	if !found {
		return domain.EmptyState()
	}

	persisted, err := store.Decode(blob)
	if err != nil {
		log.Warn("discarding corrupt cart snapshot", zap.String("key", key), zap.Error(err))
		return domain.EmptyState()
	}

	state := e.transitions().Recompute(persisted)
	if !state.Totals.Equal(persisted.Totals) {
		log.Info("cart totals recomputed on load",
			zap.String("key", key),
			zap.String("persisted_total", persisted.GrandTotal.StringFixed(2)),
			zap.String("total", state.GrandTotal.StringFixed(2)),
		)
	}
	return state
}

func (e *Engine) persist(ctx context.Context, key string, state domain.CartState) {
	log := ctxlogger.WithContext(ctx, e.log)

	blob, err := store.Encode(state)
	if err != nil {
		e.metrics.IncPersistenceFailure(metrics.OperationSave)
		log.Error("encode cart snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.Save(ctx, key, blob); err != nil {
		e.metrics.IncPersistenceFailure(metrics.OperationSave)
		log.Warn("save cart snapshot", zap.String("key", key), zap.Error(err))
	}
}

func (e *Engine) forget(ctx context.Context, key string) {
	if err := e.store.Delete(ctx, key); err != nil {
		e.metrics.IncPersistenceFailure(metrics.OperationDelete)
		ctxlogger.WithContext(ctx, e.log).Warn("delete cart snapshot", zap.String("key", key), zap.Error(err))
	}
}

func (e *Engine) lookup(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, domain.ErrInvalidProduct
	}
	item, err := e.catalog.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) || errors.Is(err, catalogdomain.ErrInvalidID) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return item.CartProduct(), nil
}

func (e *Engine) newLine(product domain.Product, quantity int, c *domain.Customizations) domain.LineItem {
	var custom *domain.Customizations
	if !c.IsZero() {
		copied := *c
		custom = &copied
	}
	return domain.LineItem{
		ID:             product.ID + "-" + e.genID.Generate().String(),
		Product:        product,
		Quantity:       quantity,
		Customizations: custom,
		AddedAt:        e.clock.Now(),
	}
}
