package eventcache

import (
	"context"

	"go.uber.org/fx"

	"github.com/artmarket/settlement/internal/config"
)

// Module provides the webhook event cache via fx.
var Module = fx.Options(
	fx.Provide(newCache),
)

func newCache(lc fx.Lifecycle, cfg *config.Config) Cache {
	if cfg.RedisAddress == "" {
		return NopCache{}
	}
	cache := NewRedisCache(cfg.RedisAddress)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})
	return cache
}
