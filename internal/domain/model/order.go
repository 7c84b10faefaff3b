package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// PaymentStatus describes payment lifecycle of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Forward-only fulfillment transitions; cancellation is reachable only
// from PROCESSING (refund path).
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}

// CanTransitionTo reports whether target is reachable from current status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether target is reachable from current payment status.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Order is the aggregate root of the settlement pipeline. Monetary fields
// are fixed-point decimals tagged with Currency; Total is always derived
// from the other three.
type Order struct {
	ID            int64
	Number        string
	UserID        int64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Currency      string
	Subtotal      decimal.Decimal
	ShippingCost  decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	// At most one of the provider references is ever set.
	CardSessionID  *string
	WalletOrderID  *string
	ShippingName   string
	ShippingStreet string
	ShippingCity   string
	ShippingZip    string
	ShippingCountry string
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem stores a price snapshot taken at order creation time; later
// artwork price changes never alter historical orders.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ArtworkID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// ProviderRef returns the bound provider session reference, if any.
func (o *Order) ProviderRef(provider Provider) *string {
	switch provider {
	case ProviderCard:
		return o.CardSessionID
	case ProviderWallet:
		return o.WalletOrderID
	}
	return nil
}
