package errors

import "errors"

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOrderNotFound       = errors.New("order not found")
	ErrItemUnavailable     = errors.New("item unavailable")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrSessionAlreadyBound = errors.New("payment session already bound")
	ErrProviderRejected    = errors.New("rejected by payment provider")
	ErrVerificationFailed  = errors.New("webhook verification failed")
	ErrSettlementConflict  = errors.New("concurrent settlement conflict")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrValidation          = errors.New("invalid input")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
)
