package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/artmarket/settlement/internal/config"
	"github.com/artmarket/settlement/internal/usecase"
)

// Module provides the settlement notifier via fx.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newNotifier(p notifierParams) usecase.Notifier {
	if len(p.Config.KafkaBrokers) == 0 {
		return NopNotifier{}
	}
	producer := NewProducer(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})
	return producer
}
