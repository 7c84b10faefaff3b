package handlers

import (
	"context"

	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/usecase"
)

// AuthFacade exposes authentication operations to handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
}

// OrderFacade exposes the order ledger to handlers.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, artworkIDs []int64, shipping usecase.ShippingInfo, currency string) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, userID, orderID int64) (*model.Order, error)
}

// PaymentFacade exposes checkout and settlement operations to handlers.
type PaymentFacade interface {
	InitiatePayment(ctx context.Context, userID, orderID int64, provider model.Provider) (*model.ProviderSessionHandle, error)
	CaptureWallet(ctx context.Context, userID, orderID int64, providerOrderID string) (*model.SettlementResult, error)
	Settle(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error)
	NormalizeEvent(provider model.Provider, rawEvent []byte) (*model.PaymentOutcome, error)
	SeenEvent(ctx context.Context, provider model.Provider, eventID string) bool
	ForgetEvent(ctx context.Context, provider model.Provider, eventID string)
}

// StatsFacade exposes artist sales statistics to handlers.
type StatsFacade interface {
	ArtistStats(ctx context.Context, artistID int64) (*model.Artist, error)
}

// Facade aggregates everything the HTTP layer needs.
type Facade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	StatsFacade
}
