package snapshot

import (
	"context"

	"github.com/redis/go-redis/v9"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("catalog.snapshot",
	fx.Provide(NewStoreFromConfig),
	fx.Provide(provideService),
)

type StoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config config.Config
	Clock  clock.Clock
	Log    *zap.Logger
}

// NewStoreFromConfig uses Redis when REDIS_ADDR is set and an in-process
// store otherwise.
func NewStoreFromConfig(p StoreParams) Store {
	if !p.Config.Redis.Enabled() {
		p.Log.Info("redis not configured, catalog snapshots kept in memory")
		return NewMemoryStore(p.Clock)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.Redis.Addr,
		Password: p.Config.Redis.Password,
		DB:       p.Config.Redis.DB,
	})
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisStore(client)
}

func provideService(catalog catalogdomain.Service, store Store, c clock.Clock, cfg config.Config, log *zap.Logger) *Service {
	return NewService(catalog, store, c, cfg.CatalogSnapshotTTL, log)
}
