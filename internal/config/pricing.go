package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PricingConfig carries the storefront's shipping and tax parameters.
type PricingConfig struct {
	FreeShippingThreshold float64 `mapstructure:"freeShippingThreshold"`
	LuxuryPriceThreshold  float64 `mapstructure:"luxuryPriceThreshold"`
	LuxuryShipping        float64 `mapstructure:"luxuryShipping"`
	StandardShipping      float64 `mapstructure:"standardShipping"`
	TaxRate               float64 `mapstructure:"taxRate"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: 75,
		LuxuryPriceThreshold:  50,
		LuxuryShipping:        15,
		StandardShipping:      10,
		TaxRate:               0.085,
	}
}

type PricingHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingHolder returns a holder pinned to cfg, without file watching.
func NewStaticPricingHolder(cfg PricingConfig) *PricingHolder {
	holder := &PricingHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPricingHolder(log *zap.Logger) (*PricingHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/spice")
	v.AddConfigPath(".")

	return newPricingHolder(v, log)
}

func newPricingHolder(v *viper.Viper, log *zap.Logger) (*PricingHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pricing.config")

	v.SetEnvPrefix("SPICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.freeShippingThreshold", defaults.FreeShippingThreshold)
	v.SetDefault("pricing.luxuryPriceThreshold", defaults.LuxuryPriceThreshold)
	v.SetDefault("pricing.luxuryShipping", defaults.LuxuryShipping)
	v.SetDefault("pricing.standardShipping", defaults.StandardShipping)
	v.SetDefault("pricing.taxRate", defaults.TaxRate)

	fromFile := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fromFile = false
	}

	cfg, err := decodePricing(v)
	if err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticPricingHolder(cfg)
	if !fromFile {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePricing(v)
		if err != nil {
			log.Warn("pricing reload failed", zap.Error(err))
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Warn("invalid pricing config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("pricing config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

// decodePricing goes through AllSettings so file values are merged over defaults.
func decodePricing(v *viper.Viper) (PricingConfig, error) {
	var wrapper struct {
		Pricing PricingConfig `mapstructure:"pricing"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return PricingConfig{}, err
	}
	return wrapper.Pricing, nil
}

func (h *PricingHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func (h *PricingHolder) Set(cfg PricingConfig) error {
	if err := validatePricingConfig(cfg); err != nil {
		return err
	}
	h.current.Store(cfg)
	return nil
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.FreeShippingThreshold < 0 {
		return errors.New("pricing.freeShippingThreshold cannot be negative")
	}
	if cfg.LuxuryPriceThreshold < 0 {
		return errors.New("pricing.luxuryPriceThreshold cannot be negative")
	}
	if cfg.LuxuryShipping < 0 || cfg.StandardShipping < 0 {
		return errors.New("pricing shipping fees cannot be negative")
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return errors.New("pricing.taxRate must be within [0, 1)")
	}
	return nil
}
