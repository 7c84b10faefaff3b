package di

import (
	"go.uber.org/fx"

	"github.com/artmarket/settlement/internal/adapter/cardpay"
	"github.com/artmarket/settlement/internal/adapter/eventcache"
	"github.com/artmarket/settlement/internal/adapter/notify"
	"github.com/artmarket/settlement/internal/adapter/walletpay"
	"github.com/artmarket/settlement/internal/app"
	"github.com/artmarket/settlement/internal/config"
	"github.com/artmarket/settlement/internal/logger"
	"github.com/artmarket/settlement/internal/pkg/auth"
	"github.com/artmarket/settlement/internal/pkg/webhook"
	"github.com/artmarket/settlement/internal/server/http/handlers"
	"github.com/artmarket/settlement/internal/server/http/middleware"
	"github.com/artmarket/settlement/internal/server/http/router"
	"github.com/artmarket/settlement/internal/storage/postgres"
	"github.com/artmarket/settlement/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		cardpay.Module,
		walletpay.Module,
		eventcache.Module,
		notify.Module,
		webhook.Module,
		usecase.Module,
		fx.Provide(func(f *app.MarketFacade) handlers.Facade { return f }),
		fx.Provide(func(f *app.MarketFacade) middleware.TokenParser { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
