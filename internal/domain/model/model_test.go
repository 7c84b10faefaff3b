package model

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusDelivered, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusCompleted, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusCompleted, PaymentStatusRefunded, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusFailed, PaymentStatusCompleted, false},
		{PaymentStatusRefunded, PaymentStatusCompleted, false},
		{PaymentStatusCompleted, PaymentStatusPending, false},
		{PaymentStatusCompleted, PaymentStatusFailed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestUnknownStatusNeverTransitions(t *testing.T) {
	if OrderStatus("BOGUS").CanTransitionTo(OrderStatusProcessing) {
		t.Error("unknown order status must not transition")
	}
	if PaymentStatus("BOGUS").CanTransitionTo(PaymentStatusCompleted) {
		t.Error("unknown payment status must not transition")
	}
}

func TestProviderRef(t *testing.T) {
	card := "cs_123"
	wallet := "W-456"
	order := Order{CardSessionID: &card, WalletOrderID: &wallet}

	if ref := order.ProviderRef(ProviderCard); ref == nil || *ref != card {
		t.Errorf("card ref: got %v", ref)
	}
	if ref := order.ProviderRef(ProviderWallet); ref == nil || *ref != wallet {
		t.Errorf("wallet ref: got %v", ref)
	}
	if ref := (&Order{}).ProviderRef(ProviderCard); ref != nil {
		t.Errorf("unbound order must have nil ref, got %q", *ref)
	}
	if ref := order.ProviderRef(Provider("other")); ref != nil {
		t.Errorf("unknown provider must have nil ref, got %q", *ref)
	}
}
