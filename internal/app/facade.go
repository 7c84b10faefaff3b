package app

import (
	"context"
	"time"

	"github.com/artmarket/settlement/internal/adapter/cardpay"
	"github.com/artmarket/settlement/internal/adapter/eventcache"
	"github.com/artmarket/settlement/internal/adapter/walletpay"
	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/domain/repository"
	"github.com/artmarket/settlement/internal/usecase"
)

// MarketFacade aggregates the use cases and provider adapters behind one
// surface consumed by HTTP handlers and the reconciliation worker.
type MarketFacade struct {
	auth       *usecase.AuthUseCase
	orders     *usecase.OrderUseCase
	settlement *usecase.SettlementUseCase
	artists    repository.ArtistRepository
	card       cardpay.Client
	wallet     walletpay.Client
	events     eventcache.Cache
}

// NewMarketFacade constructs MarketFacade.
func NewMarketFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	settlement *usecase.SettlementUseCase,
	artists repository.ArtistRepository,
	card cardpay.Client,
	wallet walletpay.Client,
	events eventcache.Cache,
) *MarketFacade {
	return &MarketFacade{
		auth:       auth,
		orders:     orders,
		settlement: settlement,
		artists:    artists,
		card:       card,
		wallet:     wallet,
		events:     events,
	}
}

func (f *MarketFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *MarketFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *MarketFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *MarketFacade) CreateOrder(ctx context.Context, userID int64, artworkIDs []int64, shipping usecase.ShippingInfo, currency string) (*model.Order, error) {
	return f.orders.Create(ctx, userID, artworkIDs, shipping, currency)
}

func (f *MarketFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *MarketFacade) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return f.orders.GetForUser(ctx, userID, orderID)
}

// InitiatePayment creates (or re-fetches) a provider session for the order
// and binds its reference. A timed-out initiate is safe to retry: the
// adapter returns the existing session and the bind is a no-op.
func (f *MarketFacade) InitiatePayment(ctx context.Context, userID, orderID int64, provider model.Provider) (*model.ProviderSessionHandle, error) {
	order, err := f.orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != model.PaymentStatusPending {
		return nil, domainErrors.ErrInvalidTransition
	}
	if bound := otherProviderRef(order, provider); bound != nil {
		return nil, domainErrors.ErrSessionAlreadyBound
	}

	var handle *model.ProviderSessionHandle
	switch provider {
	case model.ProviderCard:
		handle, err = f.card.Initiate(ctx, order)
	case model.ProviderWallet:
		handle, err = f.wallet.Initiate(ctx, order)
	default:
		return nil, domainErrors.ErrValidation
	}
	if err != nil {
		return nil, err
	}

	if err := f.orders.BindProviderSession(ctx, order.ID, provider, handle.SessionID); err != nil {
		return nil, err
	}
	return handle, nil
}

// CaptureWallet finalizes an approved wallet order and settles the result
// synchronously. The caller is trusted via their authenticated session, so
// the provider order must belong to one of the caller's orders.
func (f *MarketFacade) CaptureWallet(ctx context.Context, userID, orderID int64, providerOrderID string) (*model.SettlementResult, error) {
	order, err := f.orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.WalletOrderID == nil || *order.WalletOrderID != providerOrderID {
		return nil, domainErrors.ErrValidation
	}

	outcome, err := f.wallet.Capture(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	return f.settlement.Settle(ctx, *outcome)
}

// Settle applies a normalized payment outcome.
func (f *MarketFacade) Settle(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error) {
	return f.settlement.Settle(ctx, outcome)
}

// NormalizeEvent converts a verified raw webhook payload into an outcome
// using the matching provider adapter.
func (f *MarketFacade) NormalizeEvent(provider model.Provider, rawEvent []byte) (*model.PaymentOutcome, error) {
	switch provider {
	case model.ProviderCard:
		return f.card.Normalize(rawEvent)
	case model.ProviderWallet:
		return f.wallet.Normalize(rawEvent)
	default:
		return nil, domainErrors.ErrValidation
	}
}

// SeenEvent reports whether a webhook event id was already processed.
// Cache errors degrade to "not seen": the settlement idempotency guard is
// the authoritative protection against redelivery.
func (f *MarketFacade) SeenEvent(ctx context.Context, provider model.Provider, eventID string) bool {
	if eventID == "" {
		return false
	}
	seen, err := f.events.MarkSeen(ctx, provider, eventID)
	if err != nil {
		return false
	}
	return seen
}

// ForgetEvent drops a recorded webhook event id so the provider's retry is
// processed instead of acknowledged from the cache. Must be called whenever
// processing fails after SeenEvent recorded the id. Cache errors are
// tolerated; a stale entry only delays the order until reconciliation.
func (f *MarketFacade) ForgetEvent(ctx context.Context, provider model.Provider, eventID string) {
	if eventID == "" {
		return
	}
	_ = f.events.Forget(ctx, provider, eventID)
}

// StalePendingOrders lists orders awaiting payment past the grace period.
func (f *MarketFacade) StalePendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	return f.orders.StalePending(ctx, olderThan, limit)
}

// ArtistStats returns aggregate sales statistics for an artist.
func (f *MarketFacade) ArtistStats(ctx context.Context, artistID int64) (*model.Artist, error) {
	return f.artists.GetStats(ctx, artistID)
}

// ProviderStatus queries the provider bound to the order for a final
// outcome; nil means the payment is still in flight.
func (f *MarketFacade) ProviderStatus(ctx context.Context, order model.Order) (*model.PaymentOutcome, error) {
	switch {
	case order.CardSessionID != nil:
		return f.card.FetchStatus(ctx, *order.CardSessionID)
	case order.WalletOrderID != nil:
		return f.wallet.FetchStatus(ctx, *order.WalletOrderID)
	default:
		return nil, nil
	}
}

func otherProviderRef(order *model.Order, provider model.Provider) *string {
	if provider == model.ProviderCard {
		return order.WalletOrderID
	}
	return order.CardSessionID
}
