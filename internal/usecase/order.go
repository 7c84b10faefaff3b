package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/domain/repository"
)

// ShippingInfo is the destination supplied at order creation.
type ShippingInfo struct {
	Name    string
	Street  string
	City    string
	Zip     string
	Country string
}

// OrderUseCase encapsulates the order ledger: creation with price
// snapshots and derived totals, provider session binding, and the
// fulfillment state machine.
type OrderUseCase struct {
	orders   repository.OrderRepository
	artworks repository.ArtworkRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, artworks repository.ArtworkRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, artworks: artworks}
}

// Create validates that every requested artwork is still available,
// snapshots current prices into order items and derives the monetary
// totals. Availability is re-checked here, never trusted from the client.
func (u *OrderUseCase) Create(ctx context.Context, userID int64, artworkIDs []int64, shipping ShippingInfo, currency string) (*model.Order, error) {
	if len(artworkIDs) == 0 {
		return nil, domainErrors.ErrEmptyOrder
	}
	if err := validateShipping(shipping); err != nil {
		return nil, err
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, domainErrors.ErrValidation
	}

	seen := make(map[int64]struct{}, len(artworkIDs))
	for _, id := range artworkIDs {
		if _, dup := seen[id]; dup {
			// Originals are unique; the same listing cannot appear twice.
			return nil, domainErrors.ErrItemUnavailable
		}
		seen[id] = struct{}{}
	}

	artworks, err := u.artworks.ListByIDs(ctx, artworkIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Artwork, len(artworks))
	for _, a := range artworks {
		byID[a.ID] = a
	}

	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(artworkIDs))
	for _, id := range artworkIDs {
		artwork, ok := byID[id]
		if !ok {
			return nil, domainErrors.ErrNotFound
		}
		if !artwork.IsAvailable || artwork.Status != model.ArtworkStatusAvailable {
			return nil, domainErrors.ErrItemUnavailable
		}
		items = append(items, model.OrderItem{
			ArtworkID: artwork.ID,
			Quantity:  1,
			UnitPrice: artwork.Price,
		})
		subtotal = subtotal.Add(artwork.Price)
	}

	shippingCost := ShippingCost(subtotal)
	tax := TaxFor(subtotal)
	order := &model.Order{
		Number:          newOrderNumber(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		Currency:        currency,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		Tax:             tax,
		Total:           subtotal.Add(shippingCost).Add(tax),
		ShippingName:    shipping.Name,
		ShippingStreet:  shipping.Street,
		ShippingCity:    shipping.City,
		ShippingZip:     shipping.Zip,
		ShippingCountry: shipping.Country,
		Items:           items,
	}

	return u.orders.Create(ctx, order)
}

// GetForUser returns an order owned by the user.
func (u *OrderUseCase) GetForUser(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ListByUser returns orders sorted by creation time.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// BindProviderSession records the provider session reference for an order.
// The first binding wins; rebinding the same reference is a safe no-op.
func (u *OrderUseCase) BindProviderSession(ctx context.Context, orderID int64, provider model.Provider, ref string) error {
	if ref == "" {
		return domainErrors.ErrValidation
	}
	return u.orders.BindProviderSession(ctx, orderID, provider, ref)
}

// StalePending lists orders still awaiting payment whose provider session
// was bound before olderThan. Used by the reconciliation worker.
func (u *OrderUseCase) StalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	return u.orders.SelectStalePending(ctx, olderThan, limit)
}

// UpdateStatus advances the fulfillment state machine.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, target model.OrderStatus) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(target) {
		return domainErrors.ErrInvalidTransition
	}
	return u.orders.UpdateStatus(ctx, orderID, target)
}

func validateShipping(s ShippingInfo) error {
	if strings.TrimSpace(s.Name) == "" ||
		strings.TrimSpace(s.Street) == "" ||
		strings.TrimSpace(s.City) == "" ||
		strings.TrimSpace(s.Country) == "" {
		return domainErrors.ErrValidation
	}
	return nil
}

func newOrderNumber() string {
	return "ART-" + strings.ToUpper(uuid.NewString()[:13])
}
