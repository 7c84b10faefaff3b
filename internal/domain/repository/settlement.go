package repository

import (
	"context"

	"github.com/artmarket/settlement/internal/domain/model"
)

// SettlementRepository owns the single transactional boundary of the
// pipeline. Each method runs as one all-or-nothing unit of work: the order
// row is locked, the payment status re-checked, and every side effect is
// committed together or not at all.
type SettlementRepository interface {
	// ApplySuccess transitions the order to COMPLETED/PROCESSING, inserts the
	// sale rows, marks the artworks sold and bumps artist statistics. If the
	// order is already COMPLETED it reports AlreadySettled without touching
	// anything.
	ApplySuccess(ctx context.Context, orderID int64, sales []model.Sale) (*model.SettlementResult, error)
	// ApplyFailure transitions the payment status to FAILED; nothing else.
	ApplyFailure(ctx context.Context, orderID int64) (*model.SettlementResult, error)
	// ApplyRefund requires prior COMPLETED state, cancels the order and marks
	// its sale rows refunded. Artwork availability is left untouched.
	ApplyRefund(ctx context.Context, orderID int64) (*model.SettlementResult, error)
	// ListSalesByOrder returns sale rows recorded for an order.
	ListSalesByOrder(ctx context.Context, orderID int64) ([]model.Sale, error)
}
