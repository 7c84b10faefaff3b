package test

import (
	"context"

	"github.com/artmarket/settlement/internal/domain/model"
)

// CardClientStub substitutes the card provider adapter in tests.
type CardClientStub struct {
	InitiateFn    func(context.Context, *model.Order) (*model.ProviderSessionHandle, error)
	FetchStatusFn func(context.Context, string) (*model.PaymentOutcome, error)
	NormalizeFn   func([]byte) (*model.PaymentOutcome, error)

	InitiatedFor []int64
	FetchedIDs   []string
}

// Initiate returns a deterministic session handle unless overridden.
func (s *CardClientStub) Initiate(ctx context.Context, order *model.Order) (*model.ProviderSessionHandle, error) {
	s.InitiatedFor = append(s.InitiatedFor, order.ID)
	if s.InitiateFn != nil {
		return s.InitiateFn(ctx, order)
	}
	return &model.ProviderSessionHandle{
		Provider:    model.ProviderCard,
		SessionID:   "cs_test_" + order.Number,
		RedirectURL: "https://cardpay.test/pay/" + order.Number,
	}, nil
}

// FetchStatus records the query and applies the override.
func (s *CardClientStub) FetchStatus(ctx context.Context, sessionID string) (*model.PaymentOutcome, error) {
	s.FetchedIDs = append(s.FetchedIDs, sessionID)
	if s.FetchStatusFn != nil {
		return s.FetchStatusFn(ctx, sessionID)
	}
	return nil, nil
}

// Normalize applies the override or reports an inert event.
func (s *CardClientStub) Normalize(rawEvent []byte) (*model.PaymentOutcome, error) {
	if s.NormalizeFn != nil {
		return s.NormalizeFn(rawEvent)
	}
	return nil, nil
}

// WalletClientStub substitutes the wallet provider adapter in tests.
type WalletClientStub struct {
	InitiateFn    func(context.Context, *model.Order) (*model.ProviderSessionHandle, error)
	CaptureFn     func(context.Context, string) (*model.PaymentOutcome, error)
	FetchStatusFn func(context.Context, string) (*model.PaymentOutcome, error)
	NormalizeFn   func([]byte) (*model.PaymentOutcome, error)

	InitiatedFor []int64
	CapturedIDs  []string
	FetchedIDs   []string
}

// Initiate returns a deterministic provider order unless overridden.
func (s *WalletClientStub) Initiate(ctx context.Context, order *model.Order) (*model.ProviderSessionHandle, error) {
	s.InitiatedFor = append(s.InitiatedFor, order.ID)
	if s.InitiateFn != nil {
		return s.InitiateFn(ctx, order)
	}
	return &model.ProviderSessionHandle{
		Provider:    model.ProviderWallet,
		SessionID:   "W-" + order.Number,
		RedirectURL: "https://walletpay.test/approve/" + order.Number,
	}, nil
}

// Capture records the call and applies the override.
func (s *WalletClientStub) Capture(ctx context.Context, providerOrderID string) (*model.PaymentOutcome, error) {
	s.CapturedIDs = append(s.CapturedIDs, providerOrderID)
	if s.CaptureFn != nil {
		return s.CaptureFn(ctx, providerOrderID)
	}
	return &model.PaymentOutcome{
		Provider:              model.ProviderWallet,
		OrderReference:        providerOrderID,
		ProviderTransactionID: "cap_" + providerOrderID,
		Status:                model.OutcomeSucceeded,
	}, nil
}

// FetchStatus records the query and applies the override.
func (s *WalletClientStub) FetchStatus(ctx context.Context, providerOrderID string) (*model.PaymentOutcome, error) {
	s.FetchedIDs = append(s.FetchedIDs, providerOrderID)
	if s.FetchStatusFn != nil {
		return s.FetchStatusFn(ctx, providerOrderID)
	}
	return nil, nil
}

// Normalize applies the override or reports an inert event.
func (s *WalletClientStub) Normalize(rawEvent []byte) (*model.PaymentOutcome, error) {
	if s.NormalizeFn != nil {
		return s.NormalizeFn(rawEvent)
	}
	return nil, nil
}

// EventCacheStub reports duplicates from a fixed set.
type EventCacheStub struct {
	Seen map[string]bool
	Err  error

	Marked    []string
	Forgotten []string
}

// MarkSeen records the event id and reports pre-seeded duplicates.
func (s *EventCacheStub) MarkSeen(ctx context.Context, provider model.Provider, eventID string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	key := string(provider) + ":" + eventID
	s.Marked = append(s.Marked, key)
	if s.Seen[key] {
		return true, nil
	}
	if s.Seen == nil {
		s.Seen = make(map[string]bool)
	}
	s.Seen[key] = true
	return false, nil
}

// Forget removes the event id so a redelivery looks new again.
func (s *EventCacheStub) Forget(ctx context.Context, provider model.Provider, eventID string) error {
	if s.Err != nil {
		return s.Err
	}
	key := string(provider) + ":" + eventID
	s.Forgotten = append(s.Forgotten, key)
	delete(s.Seen, key)
	return nil
}

// NotifierStub records settlement notifications.
type NotifierStub struct {
	Settled []string
}

// OrderSettled appends the order number.
func (s *NotifierStub) OrderSettled(ctx context.Context, order *model.Order, result *model.SettlementResult) {
	s.Settled = append(s.Settled, order.Number)
}
