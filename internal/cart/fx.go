package cart

import (
	"context"
	"errors"
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/internal/cart/service"
	"github.com/nahomjim91/spice-marketplace/internal/cart/store"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("cart.service",
	fx.Provide(NewStore),
	fx.Provide(service.New),
	fx.Provide(service.NewManager),
)

type StoreParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	DB        *gorm.DB              `optional:"true"`
	Redis     redis.UniversalClient `optional:"true"`
}

// NewStore selects the snapshot backend named by CART_STORE.
func NewStore(p StoreParams) (domain.Store, error) {
	log := p.Log.Named("cart.store")

	switch p.Config.Cart.Store {
	case config.CartStoreRedis:
		if p.Redis == nil {
			return nil, errors.New("cart store redis requires REDIS_ADDR")
		}
		ttl := time.Duration(p.Config.Cart.SnapshotTTLSeconds) * time.Second
		log.Info("cart snapshots in redis", zap.Duration("ttl", ttl))
		return store.NewRedisStore(p.Redis, ttl), nil
	case config.CartStoreDatabase:
		if p.DB == nil {
			return nil, errors.New("cart store database requires a database connection")
		}
		s := store.NewGormStore(p.DB, p.Clock.Now)
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return s.Migrate(ctx)
			},
		})
		log.Info("cart snapshots in database")
		return s, nil
	default:
		log.Info("cart snapshots in memory")
		return store.NewMemoryStoreWithClock(p.Clock.Now), nil
	}
}
