package test

import (
	"context"
	"net/http"

	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/usecase"
)

// TokenParserStub substitutes token parsing in middleware tests.
type TokenParserStub struct {
	ID  int64
	Err error
}

// ParseToken returns the configured identifier or error.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// MarketFacadeStub bundles all facade stubs behind the aggregate interface.
type MarketFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	*PaymentFacadeStub
	StatsFacadeStub
}

// VerifierStub substitutes webhook signature verification.
type VerifierStub struct {
	Err      error
	Verified [][]byte
}

// Verify records the body and returns the configured error.
func (s *VerifierStub) Verify(body []byte, header http.Header) error {
	s.Verified = append(s.Verified, body)
	return s.Err
}

// AuthFacadeStub substitutes authentication operations for handler tests.
type AuthFacadeStub struct {
	RegisterFn     func(ctx context.Context, login, password string) (string, error)
	AuthenticateFn func(ctx context.Context, login, password string) (string, error)
}

// Register returns a static token unless overridden.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate returns a static token unless overridden.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// OrderFacadeStub substitutes order operations for handler tests.
type OrderFacadeStub struct {
	CreateFn func(ctx context.Context, userID int64, artworkIDs []int64, shipping usecase.ShippingInfo, currency string) (*model.Order, error)
	ListFn   func(ctx context.Context, userID int64) ([]model.Order, error)
	GetFn    func(ctx context.Context, userID, orderID int64) (*model.Order, error)
}

// CreateOrder applies the override or returns a minimal order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, artworkIDs []int64, shipping usecase.ShippingInfo, currency string) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, artworkIDs, shipping, currency)
	}
	return &model.Order{ID: 1, Number: "ART-STUB", UserID: userID, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending, Currency: currency}, nil
}

// Orders applies the override or returns nothing.
func (s OrderFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID)
	}
	return nil, nil
}

// Order applies the override or returns a minimal order.
func (s OrderFacadeStub) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, Number: "ART-STUB", UserID: userID}, nil
}

// PaymentFacadeStub substitutes payment operations for handler tests.
type PaymentFacadeStub struct {
	InitiateFn  func(ctx context.Context, userID, orderID int64, provider model.Provider) (*model.ProviderSessionHandle, error)
	CaptureFn   func(ctx context.Context, userID, orderID int64, providerOrderID string) (*model.SettlementResult, error)
	SettleFn    func(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error)
	NormalizeFn func(provider model.Provider, rawEvent []byte) (*model.PaymentOutcome, error)
	SeenFn      func(ctx context.Context, provider model.Provider, eventID string) bool
	ForgetFn    func(ctx context.Context, provider model.Provider, eventID string)

	SettledOutcomes []model.PaymentOutcome
	ForgottenEvents []string
}

// InitiatePayment applies the override or returns a deterministic handle.
func (s *PaymentFacadeStub) InitiatePayment(ctx context.Context, userID, orderID int64, provider model.Provider) (*model.ProviderSessionHandle, error) {
	if s.InitiateFn != nil {
		return s.InitiateFn(ctx, userID, orderID, provider)
	}
	return &model.ProviderSessionHandle{Provider: provider, SessionID: "sess-1", RedirectURL: "https://pay.test/sess-1"}, nil
}

// CaptureWallet applies the override or reports a completed settlement.
func (s *PaymentFacadeStub) CaptureWallet(ctx context.Context, userID, orderID int64, providerOrderID string) (*model.SettlementResult, error) {
	if s.CaptureFn != nil {
		return s.CaptureFn(ctx, userID, orderID, providerOrderID)
	}
	return &model.SettlementResult{OrderID: orderID, OrderNumber: "ART-STUB", PaymentStatus: model.PaymentStatusCompleted}, nil
}

// Settle records the outcome and applies the override.
func (s *PaymentFacadeStub) Settle(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error) {
	s.SettledOutcomes = append(s.SettledOutcomes, outcome)
	if s.SettleFn != nil {
		return s.SettleFn(ctx, outcome)
	}
	return &model.SettlementResult{OrderID: 1, OrderNumber: "ART-STUB", PaymentStatus: model.PaymentStatusCompleted}, nil
}

// NormalizeEvent applies the override or reports an inert event.
func (s *PaymentFacadeStub) NormalizeEvent(provider model.Provider, rawEvent []byte) (*model.PaymentOutcome, error) {
	if s.NormalizeFn != nil {
		return s.NormalizeFn(provider, rawEvent)
	}
	return nil, nil
}

// SeenEvent applies the override or reports the event as new.
func (s *PaymentFacadeStub) SeenEvent(ctx context.Context, provider model.Provider, eventID string) bool {
	if s.SeenFn != nil {
		return s.SeenFn(ctx, provider, eventID)
	}
	return false
}

// ForgetEvent records the dropped event id and applies the override.
func (s *PaymentFacadeStub) ForgetEvent(ctx context.Context, provider model.Provider, eventID string) {
	s.ForgottenEvents = append(s.ForgottenEvents, string(provider)+":"+eventID)
	if s.ForgetFn != nil {
		s.ForgetFn(ctx, provider, eventID)
	}
}

// StatsFacadeStub substitutes artist statistics for handler tests.
type StatsFacadeStub struct {
	StatsFn func(ctx context.Context, artistID int64) (*model.Artist, error)
}

// ArtistStats applies the override or returns an empty record.
func (s StatsFacadeStub) ArtistStats(ctx context.Context, artistID int64) (*model.Artist, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, artistID)
	}
	return &model.Artist{ID: artistID, Name: "Stub Artist"}, nil
}
