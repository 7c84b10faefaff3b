package walletpay

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
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
)

// TransientError signals a retriable wallet provider failure.
type TransientError struct {
	Cause error
}

func (e TransientError) Error() string {
	return fmt.Sprintf("transient walletpay error: %v", e.Cause)
}

func (e TransientError) Unwrap() error { return e.Cause }

// Client exposes the wallet provider operations used by the pipeline.
type Client interface {
	// Initiate creates a provider order, or returns the already-bound one.
	Initiate(ctx context.Context, order *model.Order) (*model.ProviderSessionHandle, error)
	// Capture finalizes an approved provider order and returns the outcome.
	Capture(ctx context.Context, providerOrderID string) (*model.PaymentOutcome, error)
	// FetchStatus queries the provider order state; nil while not final.
	FetchStatus(ctx context.Context, providerOrderID string) (*model.PaymentOutcome, error)
	// Normalize converts a verified webhook event into an outcome, or nil
	// for event types the pipeline ignores.
	Normalize(rawEvent []byte) (*model.PaymentOutcome, error)
}

// HTTPClient implements Client against the provider's REST API using
// client-credentials OAuth.
type HTTPClient struct {
	baseURL      *url.URL
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewHTTPClient creates the wallet provider client with default timeout.
func NewHTTPClient(baseURL, clientID, clientSecret string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse walletpay url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("walletpay url must be absolute")
	}
	return &HTTPClient{
		baseURL:      parsed,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string        `json:"reference_id"`
	Amount      amountPayload `json:"amount"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
	Links         []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// webhookEvent mirrors the provider's webhook envelope.
type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID     string        `json:"id"`
		Status string        `json:"status"`
		Amount amountPayload `json:"amount"`
		// Capture events reference the provider order through this link.
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// Initiate creates a provider order for checkout. A previously bound
// reference is returned as-is, so retries after timeouts are safe.
func (c *HTTPClient) Initiate(ctx context.Context, order *model.Order) (*model.ProviderSessionHandle, error) {
	if existing := order.WalletOrderID; existing != nil && *existing != "" {
		resp, err := c.getOrder(ctx, *existing)
		if err != nil {
			return nil, err
		}
		return handleFromOrder(resp), nil
	}

	payload, err := json.Marshal(orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: order.Number,
			Amount: amountPayload{
				CurrencyCode: order.Currency,
				Value:        order.Total.StringFixed(2),
			},
		}},
	})
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	return handleFromOrder(resp), nil
}

// Capture finalizes an approved provider order.
func (c *HTTPClient) Capture(ctx context.Context, providerOrderID string) (*model.PaymentOutcome, error) {
	var resp orderResponse
	err := c.do(ctx, http.MethodPost, "/v2/checkout/orders/"+providerOrderID+"/capture", strings.NewReader("{}"), &resp)
	if err != nil {
		return nil, err
	}
	outcome := outcomeFromOrder(resp)
	if outcome == nil {
		return nil, fmt.Errorf("%w: capture left order in state %s", domainErrors.ErrProviderRejected, resp.Status)
	}
	return outcome, nil
}

// FetchStatus returns a final outcome for the provider order, or nil while
// it is still awaiting customer approval or capture.
func (c *HTTPClient) FetchStatus(ctx context.Context, providerOrderID string) (*model.PaymentOutcome, error) {
	resp, err := c.getOrder(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	return outcomeFromOrder(resp), nil
}

// Normalize maps a webhook event to a payment outcome.
func (c *HTTPClient) Normalize(rawEvent []byte) (*model.PaymentOutcome, error) {
	var ev webhookEvent
	if err := json.Unmarshal(rawEvent, &ev); err != nil {
		return nil, fmt.Errorf("%w: malformed walletpay event", domainErrors.ErrValidation)
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("%w: incomplete walletpay event", domainErrors.ErrValidation)
	}

	orderRef := ev.Resource.SupplementaryData.RelatedIDs.OrderID
	if orderRef == "" {
		orderRef = ev.Resource.ID
	}

	var status model.OutcomeStatus
	switch ev.EventType {
	case "PAYMENT.CAPTURE.COMPLETED", "CHECKOUT.ORDER.COMPLETED":
		status = model.OutcomeSucceeded
	case "PAYMENT.CAPTURE.DENIED", "CHECKOUT.ORDER.DECLINED":
		status = model.OutcomeFailed
	case "PAYMENT.CAPTURE.REFUNDED":
		status = model.OutcomeRefunded
	default:
		return nil, nil
	}

	amount := decimal.Zero
	if ev.Resource.Amount.Value != "" {
		parsed, err := decimal.NewFromString(ev.Resource.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed amount in walletpay event", domainErrors.ErrValidation)
		}
		amount = parsed
	}

	return &model.PaymentOutcome{
		Provider:              model.ProviderWallet,
		OrderReference:        orderRef,
		ProviderTransactionID: ev.ID,
		Status:                status,
		CapturedAmount:        amount,
		Currency:              ev.Resource.Amount.CurrencyCode,
	}, nil
}

// EventID extracts the provider event identifier for deduplication.
func EventID(rawEvent []byte) string {
	var ev webhookEvent
	if err := json.Unmarshal(rawEvent, &ev); err != nil {
		return ""
	}
	return ev.ID
}

func (c *HTTPClient) getOrder(ctx context.Context, providerOrderID string) (orderResponse, error) {
	var resp orderResponse
	err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+providerOrderID, nil, &resp)
	return resp, err
}

func handleFromOrder(resp orderResponse) *model.ProviderSessionHandle {
	handle := &model.ProviderSessionHandle{Provider: model.ProviderWallet, SessionID: resp.ID}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			handle.RedirectURL = link.Href
		}
	}
	return handle
}

func outcomeFromOrder(resp orderResponse) *model.PaymentOutcome {
	var status model.OutcomeStatus
	switch resp.Status {
	case "COMPLETED":
		status = model.OutcomeSucceeded
	case "VOIDED", "DECLINED":
		status = model.OutcomeFailed
	default:
		// CREATED / APPROVED / PAYER_ACTION_REQUIRED are not final.
		return nil
	}

	outcome := &model.PaymentOutcome{
		Provider:              model.ProviderWallet,
		OrderReference:        resp.ID,
		ProviderTransactionID: resp.ID,
		Status:                status,
	}
	if len(resp.PurchaseUnits) > 0 {
		unit := resp.PurchaseUnits[0]
		outcome.Currency = unit.Amount.CurrencyCode
		if amount, err := decimal.NewFromString(unit.Amount.Value); err == nil {
			outcome.CapturedAmount = amount
		}
	}
	return outcome
}

// token returns a cached OAuth access token, refreshing when expired.
func (c *HTTPClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	endpoint := *c.baseURL
	endpoint.Path = endpoint.Path + "/v1/oauth2/token"
	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), form)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", TransientError{Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return "", TransientError{Cause: fmt.Errorf("token endpoint: %s", resp.Status)}
		}
		return "", fmt.Errorf("%w: token endpoint: %s", domainErrors.ErrProviderRejected, resp.Status)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", errors.New("empty access token")
	}

	c.accessToken = token.AccessToken
	// Refresh a minute early to avoid using a token at its expiry edge.
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	accessToken, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint := *c.baseURL
	endpoint.Path = endpoint.Path + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransientError{Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return TransientError{Cause: fmt.Errorf("walletpay error: %s", resp.Status)}
	default:
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("walletpay request rejected", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		return fmt.Errorf("%w: %s", domainErrors.ErrProviderRejected, resp.Status)
	}
}
