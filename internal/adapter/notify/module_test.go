package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/artmarket/settlement/internal/config"
	"github.com/artmarket/settlement/internal/domain/model"
	testhelpers "github.com/artmarket/settlement/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewNotifierWithoutBrokersFallsBackToNop(t *testing.T) {
	lc := &testhelpers.LifecycleRecorder{}
	notifier := newNotifier(notifierParams{Lifecycle: lc, Config: &config.Config{}, Logger: discardLogger()})
	if _, ok := notifier.(NopNotifier); !ok {
		t.Fatalf("expected NopNotifier, got %T", notifier)
	}
	if len(lc.Hooks) != 0 {
		t.Fatalf("nop notifier must not register hooks, got %d", len(lc.Hooks))
	}

	// Must be safe to call without a broker.
	notifier.OrderSettled(context.Background(), &model.Order{Number: "ART-1"}, &model.SettlementResult{})
}

func TestNewNotifierWithBrokersRegistersClose(t *testing.T) {
	lc := &testhelpers.LifecycleRecorder{}
	cfg := &config.Config{KafkaBrokers: []string{"broker:9092"}, KafkaTopic: "order-notifications"}
	notifier := newNotifier(notifierParams{Lifecycle: lc, Config: cfg, Logger: discardLogger()})
	if _, ok := notifier.(*Producer); !ok {
		t.Fatalf("expected Producer, got %T", notifier)
	}
	if len(lc.Hooks) != 1 || lc.Hooks[0].OnStop == nil {
		t.Fatalf("expected one stop hook, got %+v", lc.Hooks)
	}
	if err := lc.Hooks[0].OnStop(context.Background()); err != nil {
		t.Fatalf("close returned error: %v", err)
	}
}

func TestOrderSettledEventShape(t *testing.T) {
	order := &model.Order{Number: "ART-1", UserID: 7, Currency: "EUR", Total: decimal.NewFromInt(600)}
	result := &model.SettlementResult{PaymentStatus: model.PaymentStatusCompleted, SaleTxIDs: []string{"tx-1"}}

	event := OrderSettledEvent{
		OrderNumber:   order.Number,
		UserID:        order.UserID,
		PaymentStatus: string(result.PaymentStatus),
		Total:         order.Total.StringFixed(2),
		Currency:      order.Currency,
		SaleTxIDs:     result.SaleTxIDs,
	}
	if event.Total != "600.00" {
		t.Fatalf("expected fixed-point total, got %q", event.Total)
	}
	if event.PaymentStatus != string(model.PaymentStatusCompleted) {
		t.Fatalf("unexpected payment status %q", event.PaymentStatus)
	}
}
