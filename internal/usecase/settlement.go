package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/domain/repository"
)

// Notifier delivers customer notifications after settlement. Failures are
// logged and never affect the settlement outcome.
type Notifier interface {
	OrderSettled(ctx context.Context, order *model.Order, result *model.SettlementResult)
}

// SettlementUseCase converges payment outcomes from any provider onto a
// single consistent financial state per order. Repeated delivery of the
// same outcome is a no-op; out-of-order transitions are rejected.
type SettlementUseCase struct {
	orders      repository.OrderRepository
	settlements repository.SettlementRepository
	notifier    Notifier
	logger      *slog.Logger
}

// NewSettlementUseCase constructs SettlementUseCase.
func NewSettlementUseCase(orders repository.OrderRepository, settlements repository.SettlementRepository, notifier Notifier, logger *slog.Logger) *SettlementUseCase {
	return &SettlementUseCase{orders: orders, settlements: settlements, notifier: notifier, logger: logger}
}

// Settle applies a normalized provider outcome to the order it references.
// A zero CapturedAmount means the provider did not report one; a negative
// amount is a malformed event and is rejected outright.
func (u *SettlementUseCase) Settle(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error) {
	if outcome.CapturedAmount.IsNegative() {
		return nil, domainErrors.ErrInvalidAmount
	}

	order, err := u.orders.GetByProviderRef(ctx, outcome.Provider, outcome.OrderReference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, domainErrors.ErrOrderNotFound) {
			// Likely a stale or foreign webhook; log and reject, never retry.
			u.logger.Warn("settlement for unknown order reference",
				slog.String("provider", string(outcome.Provider)),
				slog.String("reference", outcome.OrderReference))
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}

	switch outcome.Status {
	case model.OutcomeSucceeded:
		return u.settleSuccess(ctx, order, outcome)
	case model.OutcomeFailed:
		return u.settleFailure(ctx, order)
	case model.OutcomeRefunded:
		return u.settleRefund(ctx, order)
	default:
		return nil, domainErrors.ErrValidation
	}
}

func (u *SettlementUseCase) settleSuccess(ctx context.Context, order *model.Order, outcome model.PaymentOutcome) (*model.SettlementResult, error) {
	// Fast-path idempotency guard; the authoritative re-check happens again
	// inside the settlement transaction under a row lock.
	if order.PaymentStatus == model.PaymentStatusCompleted {
		return &model.SettlementResult{
			OrderID:        order.ID,
			OrderNumber:    order.Number,
			PaymentStatus:  model.PaymentStatusCompleted,
			AlreadySettled: true,
		}, nil
	}
	if !order.PaymentStatus.CanTransitionTo(model.PaymentStatusCompleted) {
		return nil, domainErrors.ErrInvalidTransition
	}

	if !outcome.CapturedAmount.IsZero() && !outcome.CapturedAmount.Equal(order.Total) {
		u.logger.Warn("captured amount differs from order total",
			slog.String("order", order.Number),
			slog.String("captured", outcome.CapturedAmount.String()),
			slog.String("total", order.Total.String()))
	}

	sales := make([]model.Sale, 0, len(order.Items))
	for _, item := range order.Items {
		gallery, artist := SplitCommission(item.UnitPrice)
		sales = append(sales, model.Sale{
			TransactionID:     uuid.NewString(),
			OrderID:           order.ID,
			OrderItemID:       item.ID,
			ArtworkID:         item.ArtworkID,
			Price:             item.UnitPrice,
			GalleryCommission: gallery,
			ArtistEarning:     artist,
			Status:            model.SaleStatusCompleted,
		})
	}

	result, err := u.settlements.ApplySuccess(ctx, order.ID, sales)
	if err != nil {
		return nil, err
	}
	if !result.AlreadySettled {
		u.notifier.OrderSettled(ctx, order, result)
	}
	return result, nil
}

func (u *SettlementUseCase) settleFailure(ctx context.Context, order *model.Order) (*model.SettlementResult, error) {
	if order.PaymentStatus == model.PaymentStatusFailed {
		return &model.SettlementResult{
			OrderID:        order.ID,
			OrderNumber:    order.Number,
			PaymentStatus:  model.PaymentStatusFailed,
			AlreadySettled: true,
		}, nil
	}
	if !order.PaymentStatus.CanTransitionTo(model.PaymentStatusFailed) {
		return nil, domainErrors.ErrInvalidTransition
	}
	return u.settlements.ApplyFailure(ctx, order.ID)
}

func (u *SettlementUseCase) settleRefund(ctx context.Context, order *model.Order) (*model.SettlementResult, error) {
	if order.PaymentStatus == model.PaymentStatusRefunded {
		return &model.SettlementResult{
			OrderID:        order.ID,
			OrderNumber:    order.Number,
			PaymentStatus:  model.PaymentStatusRefunded,
			AlreadySettled: true,
		}, nil
	}
	if !order.PaymentStatus.CanTransitionTo(model.PaymentStatusRefunded) {
		return nil, domainErrors.ErrInvalidTransition
	}
	return u.settlements.ApplyRefund(ctx, order.ID)
}

// SalesByOrder returns recorded sales for diagnostics.
func (u *SettlementUseCase) SalesByOrder(ctx context.Context, orderID int64) ([]model.Sale, error) {
	return u.settlements.ListSalesByOrder(ctx, orderID)
}
