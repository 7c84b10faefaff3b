package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
	"github.com/artmarket/settlement/internal/test"
	"github.com/artmarket/settlement/internal/usecase"
)

func availableArtwork(id, artistID int64, price string) *model.Artwork {
	return &model.Artwork{
		ID:          id,
		ArtistID:    artistID,
		Price:       decimal.RequireFromString(price),
		Currency:    "EUR",
		IsAvailable: true,
		Status:      model.ArtworkStatusAvailable,
	}
}

func validShipping() usecase.ShippingInfo {
	return usecase.ShippingInfo{Name: "Jo Muller", Street: "Kunststr 5", City: "Berlin", Zip: "10115", Country: "DE"}
}

func TestOrderCreateSnapshotsAndTotals(t *testing.T) {
	orders := &test.OrderRepositoryStub{}
	artworks := test.NewArtworkRepositoryStub(
		availableArtwork(1, 10, "600"),
		availableArtwork(2, 11, "120.50"),
	)
	uc := usecase.NewOrderUseCase(orders, artworks)

	order, err := uc.Create(context.Background(), 7, []int64{1, 2}, validShipping(), "eur")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !strings.HasPrefix(order.Number, "ART-") {
		t.Errorf("order number %q lacks ART- prefix", order.Number)
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("new order must start pending, got %s/%s", order.Status, order.PaymentStatus)
	}
	if order.Currency != "EUR" {
		t.Errorf("currency not normalized: %q", order.Currency)
	}
	if want := decimal.RequireFromString("720.50"); !order.Subtotal.Equal(want) {
		t.Errorf("subtotal = %s, want %s", order.Subtotal, want)
	}
	if !order.ShippingCost.IsZero() {
		t.Errorf("subtotal above free tier must ship free, got %s", order.ShippingCost)
	}
	if want := decimal.RequireFromString("720.50"); !order.Total.Equal(want) {
		t.Errorf("total = %s, want %s", order.Total, want)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if !order.Items[0].UnitPrice.Equal(decimal.RequireFromString("600")) {
		t.Errorf("unit price snapshot = %s", order.Items[0].UnitPrice)
	}
}

func TestOrderCreateAddsShippingBelowThreshold(t *testing.T) {
	orders := &test.OrderRepositoryStub{}
	artworks := test.NewArtworkRepositoryStub(availableArtwork(1, 10, "100"))
	uc := usecase.NewOrderUseCase(orders, artworks)

	order, err := uc.Create(context.Background(), 7, []int64{1}, validShipping(), "EUR")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := decimal.RequireFromString("25"); !order.ShippingCost.Equal(want) {
		t.Errorf("shipping = %s, want %s", order.ShippingCost, want)
	}
	if want := decimal.RequireFromString("125"); !order.Total.Equal(want) {
		t.Errorf("total = %s, want %s", order.Total, want)
	}
}

func TestOrderCreateValidation(t *testing.T) {
	orders := &test.OrderRepositoryStub{}
	artworks := test.NewArtworkRepositoryStub(availableArtwork(1, 10, "100"))
	uc := usecase.NewOrderUseCase(orders, artworks)
	ctx := context.Background()

	if _, err := uc.Create(ctx, 7, nil, validShipping(), "EUR"); !errors.Is(err, domainErrors.ErrEmptyOrder) {
		t.Errorf("empty order: got %v", err)
	}
	if _, err := uc.Create(ctx, 7, []int64{1}, usecase.ShippingInfo{}, "EUR"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Errorf("missing shipping: got %v", err)
	}
	if _, err := uc.Create(ctx, 7, []int64{1}, validShipping(), "EURO"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Errorf("bad currency: got %v", err)
	}
	if _, err := uc.Create(ctx, 7, []int64{1, 1}, validShipping(), "EUR"); !errors.Is(err, domainErrors.ErrItemUnavailable) {
		t.Errorf("duplicate artwork: got %v", err)
	}
	if _, err := uc.Create(ctx, 7, []int64{99}, validShipping(), "EUR"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Errorf("unknown artwork: got %v", err)
	}
	if len(orders.Created) != 0 {
		t.Errorf("no order may be persisted on validation failure, got %d", len(orders.Created))
	}
}

func TestOrderCreateRejectsSoldArtwork(t *testing.T) {
	sold := availableArtwork(1, 10, "100")
	sold.IsAvailable = false
	sold.Status = model.ArtworkStatusSold

	uc := usecase.NewOrderUseCase(&test.OrderRepositoryStub{}, test.NewArtworkRepositoryStub(sold))
	if _, err := uc.Create(context.Background(), 7, []int64{1}, validShipping(), "EUR"); !errors.Is(err, domainErrors.ErrItemUnavailable) {
		t.Errorf("sold artwork: got %v", err)
	}
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	orders := &test.OrderRepositoryStub{Orders: []model.Order{{ID: 1, UserID: 7, Number: "ART-X"}}}
	uc := usecase.NewOrderUseCase(orders, test.NewArtworkRepositoryStub())

	if _, err := uc.GetForUser(context.Background(), 8, 1); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Errorf("foreign order: got %v", err)
	}
	order, err := uc.GetForUser(context.Background(), 7, 1)
	if err != nil || order.Number != "ART-X" {
		t.Errorf("own order: got %v, %v", order, err)
	}
}

func TestBindProviderSessionRejectsEmptyRef(t *testing.T) {
	orders := &test.OrderRepositoryStub{}
	uc := usecase.NewOrderUseCase(orders, test.NewArtworkRepositoryStub())

	if err := uc.BindProviderSession(context.Background(), 1, model.ProviderCard, ""); !errors.Is(err, domainErrors.ErrValidation) {
		t.Errorf("empty ref: got %v", err)
	}
	if err := uc.BindProviderSession(context.Background(), 1, model.ProviderCard, "cs_1"); err != nil {
		t.Errorf("bind: %v", err)
	}
	if len(orders.BindCalls) != 1 {
		t.Errorf("bind calls = %d, want 1", len(orders.BindCalls))
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	orders := &test.OrderRepositoryStub{Orders: []model.Order{{ID: 1, UserID: 7, Status: model.OrderStatusPending}}}
	uc := usecase.NewOrderUseCase(orders, test.NewArtworkRepositoryStub())

	if err := uc.UpdateStatus(context.Background(), 1, model.OrderStatusShipped); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Errorf("PENDING -> SHIPPED: got %v", err)
	}
	if err := uc.UpdateStatus(context.Background(), 1, model.OrderStatusProcessing); err != nil {
		t.Errorf("PENDING -> PROCESSING: %v", err)
	}
	if len(orders.StatusCalls) != 1 || orders.StatusCalls[0].Status != model.OrderStatusProcessing {
		t.Errorf("status calls = %+v", orders.StatusCalls)
	}
}
