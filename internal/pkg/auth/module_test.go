package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/artmarket/settlement/internal/config"
)

func TestNewPasswordHasher(t *testing.T) {
	hasher, ok := newPasswordHasher().(*BcryptHasher)
	if !ok {
		t.Fatalf("expected *BcryptHasher, got %T", newPasswordHasher())
	}
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", hasher.cost, bcrypt.DefaultCost)
	}
}

func TestNewTokenStrategy(t *testing.T) {
	cfg := &config.Config{SessionSecret: "top-secret"}
	strategy, ok := newTokenStrategy(strategyParams{Config: cfg}).(*HMACStrategy)
	if !ok {
		t.Fatal("expected *HMACStrategy")
	}
	if string(strategy.secret) != "top-secret" {
		t.Fatalf("secret = %q", string(strategy.secret))
	}
	if strategy.ttl != defaultSessionTTL {
		t.Fatalf("ttl = %s, want %s", strategy.ttl, defaultSessionTTL)
	}
}
