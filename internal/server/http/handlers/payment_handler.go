package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/server/http/dto"
)

// PaymentHandler processes checkout initiation and wallet capture.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler creates PaymentHandler instance.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Initiate handles POST /api/orders/:id/payment.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	provider := model.Provider(req.Provider)
	if provider != model.ProviderCard && provider != model.ProviderWallet {
		c.Status(http.StatusBadRequest)
		return
	}

	handle, err := h.facade.InitiatePayment(c.Request.Context(), CurrentUserID(c), orderID, provider)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrOrderNotFound), errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrSessionAlreadyBound),
			errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrProviderRejected):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusBadGateway)
		}
		return
	}

	c.JSON(http.StatusOK, dto.PaymentSessionResponse{
		Provider:    string(handle.Provider),
		SessionID:   handle.SessionID,
		RedirectURL: handle.RedirectURL,
	})
}

// CaptureWallet handles POST /api/payments/wallet/capture.
func (h *PaymentHandler) CaptureWallet(c *gin.Context) {
	var req dto.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.OrderID <= 0 || req.ProviderOrderID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.facade.CaptureWallet(c.Request.Context(), CurrentUserID(c), req.OrderID, req.ProviderOrderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrOrderNotFound), errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrValidation):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrSessionAlreadyBound),
			errors.Is(err, domainErrors.ErrInvalidTransition),
			errors.Is(err, domainErrors.ErrSettlementConflict):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrProviderRejected):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusBadGateway)
		}
		return
	}

	c.JSON(http.StatusOK, toSettlementResponse(result))
}

func toSettlementResponse(result *model.SettlementResult) dto.SettlementResponse {
	return dto.SettlementResponse{
		OrderNumber:    result.OrderNumber,
		PaymentStatus:  string(result.PaymentStatus),
		AlreadySettled: result.AlreadySettled,
		SaleTxIDs:      result.SaleTxIDs,
	}
}
