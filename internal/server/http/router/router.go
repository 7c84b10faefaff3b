package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/artmarket/settlement/internal/pkg/webhook"
	"github.com/artmarket/settlement/internal/server/http/handlers"
	"github.com/artmarket/settlement/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.Facade, parser middleware.TokenParser, verifiers webhook.Verifiers, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade, verifiers, logger)
	statsHandler := handlers.NewStatsHandler(facade)

	api := engine.Group("/api")

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	// Provider callbacks authenticate themselves by signature, not session.
	webhooks := api.Group("/webhooks")
	webhooks.POST("/cardpay", webhookHandler.Cardpay)
	webhooks.POST("/walletpay", webhookHandler.Walletpay)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(parser))
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/payment", paymentHandler.Initiate)
	authed.POST("/payments/wallet/capture", paymentHandler.CaptureWallet)
	authed.GET("/artists/:id/stats", statsHandler.ArtistStats)

	return engine
}
