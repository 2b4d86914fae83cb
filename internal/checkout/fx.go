package checkout

import (
	"context"

	"github.com/nahomjim91/spice-marketplace/internal/checkout/domain"
	"github.com/nahomjim91/spice-marketplace/internal/checkout/repository"
	"github.com/nahomjim91/spice-marketplace/internal/checkout/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("checkout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(migrate),
)

func migrate(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return db.WithContext(ctx).AutoMigrate(&domain.Order{})
		},
	})
}
