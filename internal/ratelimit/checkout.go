package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nahomjim91/spice-marketplace/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyCheckoutSession = "checkout:session:%s"

// CheckoutLimiter caps how often one cart session may attempt payment.
type CheckoutLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewCheckoutLimiter returns nil when limiting is disabled or redis is absent;
// a nil limiter allows everything.
func NewCheckoutLimiter(cfg config.Config, client redis.UniversalClient, log *zap.Logger) (*CheckoutLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		log.Warn("checkout rate limit enabled without REDIS_ADDR, limiting disabled")
		return nil, nil
	}
	if limitCfg.CheckoutRate <= 0 || limitCfg.CheckoutBurst <= 0 {
		return nil, errors.New("checkout rate limit must be positive")
	}

	return &CheckoutLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.CheckoutRate,
		burst:  limitCfg.CheckoutBurst,
	}, nil
}

func (l *CheckoutLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *CheckoutLimiter) Allow(ctx context.Context, sessionID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCheckoutSession, strings.TrimSpace(sessionID)), l.rate, l.burst)
}
