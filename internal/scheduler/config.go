package scheduler

import (
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/config"
)

// Config controls janitor intervals and cutoffs.
type Config struct {
	RunInterval      time.Duration
	JobTimeout       time.Duration
	IdleSessionAfter time.Duration
	// SnapshotRetention of zero keeps database snapshots forever.
	SnapshotRetention time.Duration
}

// MemorySnapshotRetention applies to the in-process store when
// CART_SNAPSHOT_TTL_SECONDS is unset.
const MemorySnapshotRetention = 24 * time.Hour

func DefaultConfig() Config {
	return Config{
		RunInterval:      time.Minute,
		JobTimeout:       30 * time.Second,
		IdleSessionAfter: 30 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.IdleSessionAfter <= 0 {
		c.IdleSessionAfter = defaults.IdleSessionAfter
	}
	if c.SnapshotRetention < 0 {
		c.SnapshotRetention = 0
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	retention := time.Duration(cfg.Cart.SnapshotTTLSeconds) * time.Second
	if retention <= 0 && cfg.Cart.Store == config.CartStoreMemory {
		retention = MemorySnapshotRetention
	}
	return Config{
		RunInterval:       time.Duration(cfg.Janitor.IntervalSeconds) * time.Second,
		IdleSessionAfter:  time.Duration(cfg.Janitor.IdleSessionSeconds) * time.Second,
		SnapshotRetention: retention,
	}.withDefaults()
}
