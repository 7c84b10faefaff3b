package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/artmarket/settlement/internal/adapter/cardpay"
	"github.com/artmarket/settlement/internal/adapter/eventcache"
	"github.com/artmarket/settlement/internal/adapter/walletpay"
	"github.com/artmarket/settlement/internal/app"
	"github.com/artmarket/settlement/internal/config"
	"github.com/artmarket/settlement/internal/domain/repository"
	"github.com/artmarket/settlement/internal/pkg/webhook"
	"github.com/artmarket/settlement/internal/storage/postgres"
	"github.com/artmarket/settlement/internal/test"
	"github.com/artmarket/settlement/internal/usecase"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:        ":0",
		DatabaseURI:       "postgres://stub",
		SessionSecret:     "secret",
		ReconcileInterval: time.Millisecond,
		ReconcileGrace:    time.Minute,
		ReconcileBatch:    1,
		WorkerPoolSize:    1,
		ShutdownTimeout:   time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	userRepo := test.NewUserRepositoryStub()
	orderRepo := &test.OrderRepositoryStub{}
	artworkRepo := test.NewArtworkRepositoryStub()
	artistRepo := &test.ArtistRepositoryStub{}
	settlementRepo := &test.SettlementRepositoryStub{}
	verifier := &test.VerifierStub{}

	var facade *app.MarketFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.UserRepository(userRepo)),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(repository.ArtworkRepository(artworkRepo)),
			fx.Replace(repository.ArtistRepository(artistRepo)),
			fx.Replace(repository.SettlementRepository(settlementRepo)),
			fx.Replace(cardpay.Client(&test.CardClientStub{})),
			fx.Replace(walletpay.Client(&test.WalletClientStub{})),
			fx.Replace(eventcache.Cache(&test.EventCacheStub{})),
			fx.Replace(usecase.Notifier(&test.NotifierStub{})),
			fx.Replace(webhook.Verifiers{Card: verifier, Wallet: verifier}),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected market facade instance")
	}
}
