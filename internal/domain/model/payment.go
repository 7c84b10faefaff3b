package model

import "github.com/shopspring/decimal"

// Provider identifies a payment provider integration.
type Provider string

const (
	ProviderCard   Provider = "cardpay"
	ProviderWallet Provider = "walletpay"
)

// OutcomeStatus is the normalized result of a provider event.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "SUCCEEDED"
	OutcomeFailed    OutcomeStatus = "FAILED"
	OutcomeRefunded  OutcomeStatus = "REFUNDED"
)

// PaymentOutcome is the transient, provider-agnostic result produced by an
// adapter from a webhook event or a synchronous capture call. It is never
// persisted; settlement consumes it.
type PaymentOutcome struct {
	Provider              Provider
	OrderReference        string
	ProviderTransactionID string
	Status                OutcomeStatus
	CapturedAmount        decimal.Decimal
	Currency              string
}

// ProviderSessionHandle references a provider-side payment session created
// for an order. RedirectURL is where the customer completes the payment.
type ProviderSessionHandle struct {
	Provider    Provider
	SessionID   string
	RedirectURL string
}

// SettlementResult reports the effect of applying an outcome.
type SettlementResult struct {
	OrderID        int64
	OrderNumber    string
	PaymentStatus  PaymentStatus
	AlreadySettled bool
	SaleTxIDs      []string
}
