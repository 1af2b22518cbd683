package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/glazier/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPricingPreviewOrg = "glazier:ratelimit:preview:org:%s"

// PreviewLimiter throttles pricing previews per organization. A nil limiter
// allows everything.
type PreviewLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPreviewLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *PreviewLimiter {
	if !cfg.RateLimit.Enabled() {
		return nil
	}
	if !cfg.Redis.Enabled() {
		log.Warn("pricing preview rate limit needs redis, limit disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return newPreviewLimiter(client, cfg.RateLimit)
}

func newPreviewLimiter(client redis.Scripter, cfg config.RateLimitConfig) *PreviewLimiter {
	return &PreviewLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.PreviewRate,
		burst:  cfg.PreviewBurst,
	}
}

func (l *PreviewLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PreviewLimiter) Allow(ctx context.Context, orgID string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPricingPreviewOrg, strings.TrimSpace(orgID)), l.rate, l.burst)
}
