package walletpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOrder() *model.Order {
	return &model.Order{
		ID:       1,
		Number:   "ART-ABC123",
		Currency: "EUR",
		Total:    decimal.RequireFromString("720.5"),
	}
}

// walletServer emulates the provider: an OAuth token endpoint plus an API
// handler for everything else.
func walletServer(t *testing.T, tokenCalls *atomic.Int64, api http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			if tokenCalls != nil {
				tokenCalls.Add(1)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"access_token": "tok_1", "expires_in": 3600})
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok_1" {
			t.Errorf("authorization = %q", auth)
		}
		api(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "client", "secret", testLogger())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client
}

func TestInitiateCreatesProviderOrder(t *testing.T) {
	var gotBody orderRequest
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/checkout/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(orderResponse{
			ID:     "W-77",
			Status: "CREATED",
			Links: []struct {
				Rel  string `json:"rel"`
				Href string `json:"href"`
			}{{Rel: "approve", Href: "https://walletpay.test/approve/W-77"}},
		})
	})

	handle, err := client.Initiate(context.Background(), testOrder())
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if handle.SessionID != "W-77" || handle.RedirectURL != "https://walletpay.test/approve/W-77" {
		t.Errorf("handle = %+v", handle)
	}
	if gotBody.Intent != "CAPTURE" {
		t.Errorf("intent = %q", gotBody.Intent)
	}
	if len(gotBody.PurchaseUnits) != 1 || gotBody.PurchaseUnits[0].Amount.Value != "720.50" {
		t.Errorf("purchase units = %+v", gotBody.PurchaseUnits)
	}
}

func TestInitiateReusesBoundOrder(t *testing.T) {
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2/checkout/orders/W-bound" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(orderResponse{ID: "W-bound", Status: "CREATED"})
	})

	order := testOrder()
	bound := "W-bound"
	order.WalletOrderID = &bound

	handle, err := client.Initiate(context.Background(), order)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if handle.SessionID != "W-bound" {
		t.Errorf("session = %q", handle.SessionID)
	}
}

func TestTokenIsCached(t *testing.T) {
	var tokenCalls atomic.Int64
	client := walletServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orderResponse{ID: "W-1", Status: "CREATED"})
	})

	for i := 0; i < 3; i++ {
		if _, err := client.Initiate(context.Background(), testOrder()); err != nil {
			t.Fatalf("Initiate %d: %v", i, err)
		}
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("token endpoint hit %d times, want 1", got)
	}
}

func TestCaptureCompletedOrder(t *testing.T) {
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/checkout/orders/W-77/capture" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(orderResponse{
			ID:     "W-77",
			Status: "COMPLETED",
			PurchaseUnits: []purchaseUnit{{
				ReferenceID: "ART-ABC123",
				Amount:      amountPayload{CurrencyCode: "EUR", Value: "720.50"},
			}},
		})
	})

	outcome, err := client.Capture(context.Background(), "W-77")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if outcome.Status != model.OutcomeSucceeded || outcome.OrderReference != "W-77" {
		t.Errorf("outcome = %+v", outcome)
	}
	if !outcome.CapturedAmount.Equal(decimal.RequireFromString("720.50")) {
		t.Errorf("captured = %s", outcome.CapturedAmount)
	}
}

func TestCaptureNonFinalOrderRejected(t *testing.T) {
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orderResponse{ID: "W-77", Status: "PAYER_ACTION_REQUIRED"})
	})

	if _, err := client.Capture(context.Background(), "W-77"); !errors.Is(err, domainErrors.ErrProviderRejected) {
		t.Fatalf("non-final capture: got %v", err)
	}
}

func TestFetchStatus(t *testing.T) {
	cases := []struct {
		status string
		want   model.OutcomeStatus
		final  bool
	}{
		{"COMPLETED", model.OutcomeSucceeded, true},
		{"VOIDED", model.OutcomeFailed, true},
		{"DECLINED", model.OutcomeFailed, true},
		{"CREATED", "", false},
		{"APPROVED", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(orderResponse{ID: "W-1", Status: tc.status})
			})
			outcome, err := client.FetchStatus(context.Background(), "W-1")
			if err != nil {
				t.Fatalf("FetchStatus: %v", err)
			}
			if !tc.final {
				if outcome != nil {
					t.Fatalf("non-final state must yield nil, got %+v", outcome)
				}
				return
			}
			if outcome == nil || outcome.Status != tc.want {
				t.Fatalf("outcome = %+v, want %s", outcome, tc.want)
			}
		})
	}
}

func TestServerErrorsAreTransient(t *testing.T) {
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Initiate(context.Background(), testOrder())
	var transient TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("5xx must be transient, got %v", err)
	}
}

func TestNormalizeEventTypes(t *testing.T) {
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	capture := `{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"cap_5","amount":{"currency_code":"EUR","value":"720.50"},"supplementary_data":{"related_ids":{"order_id":"W-77"}}}}`
	outcome, err := client.Normalize([]byte(capture))
	if err != nil {
		t.Fatalf("Normalize capture: %v", err)
	}
	if outcome.Status != model.OutcomeSucceeded {
		t.Errorf("capture status = %s", outcome.Status)
	}
	if outcome.OrderReference != "W-77" {
		t.Errorf("capture must reference the provider order, got %q", outcome.OrderReference)
	}
	if outcome.ProviderTransactionID != "WH-1" {
		t.Errorf("transaction id = %q", outcome.ProviderTransactionID)
	}

	declined := `{"id":"WH-2","event_type":"CHECKOUT.ORDER.DECLINED","resource":{"id":"W-78"}}`
	outcome, err = client.Normalize([]byte(declined))
	if err != nil {
		t.Fatalf("Normalize declined: %v", err)
	}
	if outcome.Status != model.OutcomeFailed || outcome.OrderReference != "W-78" {
		t.Errorf("declined outcome = %+v", outcome)
	}

	refunded := `{"id":"WH-3","event_type":"PAYMENT.CAPTURE.REFUNDED","resource":{"id":"cap_5","supplementary_data":{"related_ids":{"order_id":"W-77"}}}}`
	outcome, err = client.Normalize([]byte(refunded))
	if err != nil {
		t.Fatalf("Normalize refunded: %v", err)
	}
	if outcome.Status != model.OutcomeRefunded {
		t.Errorf("refunded status = %s", outcome.Status)
	}

	ignored := `{"id":"WH-4","event_type":"CUSTOMER.DISPUTE.CREATED","resource":{"id":"d_1"}}`
	outcome, err = client.Normalize([]byte(ignored))
	if err != nil || outcome != nil {
		t.Errorf("ignored event: outcome=%+v err=%v", outcome, err)
	}
}

func TestNormalizeRejectsMalformedEvents(t *testing.T) {
	client := walletServer(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := client.Normalize([]byte(`{{{`)); !errors.Is(err, domainErrors.ErrValidation) {
		t.Errorf("malformed json: %v", err)
	}
	if _, err := client.Normalize([]byte(`{"event_type":"PAYMENT.CAPTURE.COMPLETED"}`)); !errors.Is(err, domainErrors.ErrValidation) {
		t.Errorf("missing id: %v", err)
	}
	bad := `{"id":"WH-5","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"cap_1","amount":{"value":"abc"}}}`
	if _, err := client.Normalize([]byte(bad)); !errors.Is(err, domainErrors.ErrValidation) {
		t.Errorf("malformed amount: %v", err)
	}
}

func TestEventID(t *testing.T) {
	if id := EventID([]byte(`{"id":"WH-9"}`)); id != "WH-9" {
		t.Errorf("EventID = %q", id)
	}
	if id := EventID([]byte(`nope`)); id != "" {
		t.Errorf("EventID of garbage = %q", id)
	}
}

func TestTokenRejectionIsNotTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "client", "wrong", testLogger())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	_, err = client.Initiate(context.Background(), testOrder())
	if !errors.Is(err, domainErrors.ErrProviderRejected) {
		t.Fatalf("bad credentials: got %v", err)
	}
	var transient TransientError
	if errors.As(err, &transient) {
		t.Errorf("credential rejection must not be transient: %v", err)
	}
}
