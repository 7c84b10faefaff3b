package repository

import (
	"context"
	"time"

	"github.com/artmarket/settlement/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	// GetByProviderRef resolves an order from the session/intent reference
	// a provider reports back in its events.
	GetByProviderRef(ctx context.Context, provider model.Provider, ref string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	// BindProviderSession sets the provider reference once. Binding the same
	// reference again is a no-op; any other binding fails.
	BindProviderSession(ctx context.Context, orderID int64, provider model.Provider, ref string) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// SelectStalePending returns orders still awaiting payment that have had
	// a provider session bound for longer than the grace period.
	SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error)
}
