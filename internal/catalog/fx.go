package catalog

import (
	"context"

	"github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	"github.com/nahomjim91/spice-marketplace/internal/catalog/repository"
	"github.com/nahomjim91/spice-marketplace/internal/catalog/service"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(seedOnStart),
)

func seedOnStart(lc fx.Lifecycle, cfg config.Config, svc domain.Service) {
	if !cfg.CatalogSeed {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Seed(ctx)
		},
	})
}
