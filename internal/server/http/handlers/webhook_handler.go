package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artmarket/settlement/internal/adapter/cardpay"
	"github.com/artmarket/settlement/internal/adapter/walletpay"
	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/pkg/webhook"
)

const maxWebhookBody = 1 << 20

// WebhookHandler processes inbound provider callbacks. Both endpoints are
// unauthenticated; trust comes from signature verification over the raw
// request bytes.
type WebhookHandler struct {
	facade    PaymentFacade
	verifiers webhook.Verifiers
	logger    *slog.Logger
}

// NewWebhookHandler creates WebhookHandler instance.
func NewWebhookHandler(facade PaymentFacade, verifiers webhook.Verifiers, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, verifiers: verifiers, logger: logger}
}

// Cardpay handles POST /api/webhooks/cardpay.
func (h *WebhookHandler) Cardpay(c *gin.Context) {
	h.handle(c, model.ProviderCard, h.verifiers.Card, cardpay.EventID)
}

// Walletpay handles POST /api/webhooks/walletpay.
func (h *WebhookHandler) Walletpay(c *gin.Context) {
	h.handle(c, model.ProviderWallet, h.verifiers.Wallet, walletpay.EventID)
}

func (h *WebhookHandler) handle(c *gin.Context, provider model.Provider, verifier webhook.Verifier, eventID func([]byte) string) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := verifier.Verify(body, c.Request.Header); err != nil {
		h.logger.Warn("webhook rejected",
			slog.String("provider", string(provider)),
			slog.String("error", err.Error()))
		c.Status(http.StatusUnauthorized)
		return
	}

	id := eventID(body)
	if id != "" && h.facade.SeenEvent(c.Request.Context(), provider, id) {
		c.Status(http.StatusOK)
		return
	}

	outcome, err := h.facade.NormalizeEvent(provider, body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if outcome == nil {
		// Event type carries no settlement meaning; acknowledge so the
		// provider stops redelivering it.
		c.Status(http.StatusOK)
		return
	}

	result, err := h.facade.Settle(c.Request.Context(), *outcome)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrOrderNotFound):
			// Callback for an order this system never issued. Acknowledge
			// to stop redelivery, but keep a trace for reconciliation.
			h.logger.Warn("webhook for unknown order",
				slog.String("provider", string(provider)),
				slog.String("order_reference", outcome.OrderReference),
				slog.String("event_id", id))
			c.Status(http.StatusOK)
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			// Out of order; a later retry may succeed once the prerequisite
			// event lands, so the id must not stay in the dedup cache.
			h.facade.ForgetEvent(c.Request.Context(), provider, id)
			c.Status(http.StatusConflict)
		default:
			// Transient failure: 500 makes the provider redeliver, and the
			// dedup entry is dropped so the retry actually settles instead
			// of being acknowledged from the cache.
			h.facade.ForgetEvent(c.Request.Context(), provider, id)
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	if result.AlreadySettled {
		h.logger.Info("duplicate webhook delivery ignored",
			slog.String("provider", string(provider)),
			slog.String("order_number", result.OrderNumber))
	}
	c.Status(http.StatusOK)
}
