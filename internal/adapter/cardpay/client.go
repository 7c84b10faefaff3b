package cardpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
)

// TransientError signals a retriable provider failure (network error, 5xx,
// rate limiting). The caller may retry; the existing-session check keeps
// retries from creating duplicate sessions.
type TransientError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e TransientError) Error() string {
	return fmt.Sprintf("transient cardpay error (retry after %s): %v", e.RetryAfter, e.Cause)
}

func (e TransientError) Unwrap() error { return e.Cause }

// Client exposes the card provider operations used by the pipeline.
type Client interface {
	// Initiate creates a provider checkout session for the order, or returns
	// the already-bound session when called again for the same order.
	Initiate(ctx context.Context, order *model.Order) (*model.ProviderSessionHandle, error)
	// FetchStatus queries the provider for a session's current state and
	// returns a final outcome, or nil if the session is still open.
	FetchStatus(ctx context.Context, sessionID string) (*model.PaymentOutcome, error)
	// Normalize converts a verified webhook event payload into an outcome,
	// or nil for event types the pipeline does not act on.
	Normalize(rawEvent []byte) (*model.PaymentOutcome, error)
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates the card provider client with default timeout.
func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse cardpay url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("cardpay url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type sessionRequest struct {
	ClientReference string `json:"client_reference_id"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
}

type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	ClientRef     string `json:"client_reference_id"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// outcomeFromSession derives a final outcome from session state, or nil
// while the session is still open.
func outcomeFromSession(session sessionResponse) *model.PaymentOutcome {
	switch {
	case session.PaymentStatus == "paid":
		return &model.PaymentOutcome{
			Provider:              model.ProviderCard,
			OrderReference:        session.ID,
			ProviderTransactionID: session.ID,
			Status:                model.OutcomeSucceeded,
			CapturedAmount:        amountMajor(session.AmountTotal),
			Currency:              session.Currency,
		}
	case session.Status == "expired":
		return &model.PaymentOutcome{
			Provider:              model.ProviderCard,
			OrderReference:        session.ID,
			ProviderTransactionID: session.ID,
			Status:                model.OutcomeFailed,
			Currency:              session.Currency,
		}
	default:
		return nil
	}
}

// event mirrors the provider's webhook envelope.
type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object sessionResponse `json:"object"`
	} `json:"data"`
}

// Initiate creates a checkout session. If the order already carries a card
// session reference the existing session is fetched instead, so a retry
// after a timed-out call never produces a duplicate.
func (c *HTTPClient) Initiate(ctx context.Context, order *model.Order) (*model.ProviderSessionHandle, error) {
	if existing := order.CardSessionID; existing != nil && *existing != "" {
		return c.fetchSession(ctx, *existing)
	}

	payload, err := json.Marshal(sessionRequest{
		ClientReference: order.Number,
		AmountTotal:     amountMinor(order.Total),
		Currency:        order.Currency,
	})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// The provider deduplicates session creation on this key.
	req.Header.Set("Idempotency-Key", order.Number)

	var session sessionResponse
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &model.ProviderSessionHandle{
		Provider:    model.ProviderCard,
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

func (c *HTTPClient) fetchSession(ctx context.Context, sessionID string) (*model.ProviderSessionHandle, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var session sessionResponse
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &model.ProviderSessionHandle{
		Provider:    model.ProviderCard,
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

// FetchStatus returns a final outcome for the session, or nil while the
// customer has not finished paying.
func (c *HTTPClient) FetchStatus(ctx context.Context, sessionID string) (*model.PaymentOutcome, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var session sessionResponse
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return outcomeFromSession(session), nil
}

// Normalize maps a webhook event to a payment outcome. Unhandled event
// types yield nil so callers can acknowledge and ignore them.
func (c *HTTPClient) Normalize(rawEvent []byte) (*model.PaymentOutcome, error) {
	var ev event
	if err := json.Unmarshal(rawEvent, &ev); err != nil {
		return nil, fmt.Errorf("%w: malformed cardpay event", domainErrors.ErrValidation)
	}
	if ev.ID == "" || ev.Data.Object.ID == "" {
		return nil, fmt.Errorf("%w: incomplete cardpay event", domainErrors.ErrValidation)
	}

	session := ev.Data.Object
	switch ev.Type {
	case "checkout.session.completed":
		return &model.PaymentOutcome{
			Provider:              model.ProviderCard,
			OrderReference:        session.ID,
			ProviderTransactionID: ev.ID,
			Status:                model.OutcomeSucceeded,
			CapturedAmount:        amountMajor(session.AmountTotal),
			Currency:              session.Currency,
		}, nil
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		return &model.PaymentOutcome{
			Provider:              model.ProviderCard,
			OrderReference:        session.ID,
			ProviderTransactionID: ev.ID,
			Status:                model.OutcomeFailed,
			Currency:              session.Currency,
		}, nil
	case "charge.refunded":
		return &model.PaymentOutcome{
			Provider:              model.ProviderCard,
			OrderReference:        session.ID,
			ProviderTransactionID: ev.ID,
			Status:                model.OutcomeRefunded,
			CapturedAmount:        amountMajor(session.AmountTotal),
			Currency:              session.Currency,
		}, nil
	default:
		return nil, nil
	}
}

// EventID extracts the provider event identifier for deduplication.
func EventID(rawEvent []byte) string {
	var ev event
	if err := json.Unmarshal(rawEvent, &ev); err != nil {
		return ""
	}
	return ev.ID
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := *c.baseURL
	endpoint.Path = endpoint.Path + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransientError{RetryAfter: 5 * time.Second, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, out)
	case resp.StatusCode == http.StatusTooManyRequests:
		return TransientError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Cause:      errors.New("rate limited"),
		}
	case resp.StatusCode >= 500:
		return TransientError{RetryAfter: 5 * time.Second, Cause: fmt.Errorf("cardpay error: %s", resp.Status)}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("cardpay request rejected", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("%w: %s", domainErrors.ErrProviderRejected, resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

// The provider speaks minor units (cents); the ledger keeps major units.
func amountMinor(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

func amountMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
