package payment

import (
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/config"
	"github.com/nahomjim91/spice-marketplace/internal/payment/adapters"
	"github.com/nahomjim91/spice-marketplace/internal/payment/adapters/simulated"
	"github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.service",
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			simulated.NewFactory(),
		)
	}),
	fx.Provide(NewGateway),
)

// NewGateway builds the gateway named by PAYMENT_PROVIDER.
func NewGateway(registry *adapters.Registry, cfg config.Config, log *zap.Logger) (domain.Gateway, error) {
	factory, err := registry.Resolve(cfg.Payment.Provider)
	if err != nil {
		return nil, err
	}
	gw, err := factory.NewAdapter(domain.AdapterConfig{
		Currency:    cfg.Payment.Currency,
		SuccessRate: cfg.Payment.SuccessRate,
		Latency:     time.Duration(cfg.Payment.LatencyMS) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	log.Named("payment").Info("payment gateway ready",
		zap.String("provider", factory.Provider()),
		zap.Float64("success_rate", cfg.Payment.SuccessRate),
	)
	return gw, nil
}
