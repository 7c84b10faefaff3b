package cardpay

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/artmarket/settlement/internal/config"
)

// Module exposes the card provider client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.CardAPIBase, p.Config.CardAPIKey, p.Logger)
}
