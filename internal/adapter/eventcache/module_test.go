package eventcache

import (
	"context"
	"testing"

	"github.com/artmarket/settlement/internal/config"
	"github.com/artmarket/settlement/internal/domain/model"
	testhelpers "github.com/artmarket/settlement/internal/test"
)

func TestNewCacheWithoutRedisFallsBackToNop(t *testing.T) {
	lc := &testhelpers.LifecycleRecorder{}
	cache := newCache(lc, &config.Config{})
	if _, ok := cache.(NopCache); !ok {
		t.Fatalf("expected NopCache, got %T", cache)
	}
	if len(lc.Hooks) != 0 {
		t.Fatalf("nop cache must not register hooks, got %d", len(lc.Hooks))
	}
}

func TestNewCacheWithRedisRegistersClose(t *testing.T) {
	lc := &testhelpers.LifecycleRecorder{}
	cache := newCache(lc, &config.Config{RedisAddress: "localhost:6379"})
	if _, ok := cache.(*RedisCache); !ok {
		t.Fatalf("expected RedisCache, got %T", cache)
	}
	if len(lc.Hooks) != 1 || lc.Hooks[0].OnStop == nil {
		t.Fatalf("expected one stop hook, got %+v", lc.Hooks)
	}
	if err := lc.Hooks[0].OnStop(context.Background()); err != nil {
		t.Fatalf("close returned error: %v", err)
	}
}

func TestNopCacheNeverSeen(t *testing.T) {
	seen, err := NopCache{}.MarkSeen(context.Background(), model.ProviderCard, "evt_1")
	if err != nil || seen {
		t.Fatalf("expected not seen without error, got seen=%v err=%v", seen, err)
	}
	seen, err = NopCache{}.MarkSeen(context.Background(), model.ProviderCard, "evt_1")
	if err != nil || seen {
		t.Fatalf("expected redelivery to still look new, got seen=%v err=%v", seen, err)
	}
}
