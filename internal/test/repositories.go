package test

import (
	"context"
	"time"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// BindCall records one BindProviderSession invocation.
type BindCall struct {
	OrderID  int64
	Provider model.Provider
	Ref      string
}

// StatusCall records one UpdateStatus invocation.
type StatusCall struct {
	OrderID int64
	Status  model.OrderStatus
}

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	CreateFn             func(context.Context, *model.Order) (*model.Order, error)
	GetByIDFn            func(context.Context, int64) (*model.Order, error)
	GetByNumberFn        func(context.Context, string) (*model.Order, error)
	GetByProviderRefFn   func(context.Context, model.Provider, string) (*model.Order, error)
	ListByUserFn         func(context.Context, int64) ([]model.Order, error)
	BindFn               func(context.Context, int64, model.Provider, string) error
	UpdateStatusFn       func(context.Context, int64, model.OrderStatus) error
	SelectStalePendingFn func(context.Context, time.Time, int) ([]model.Order, error)

	Orders      []model.Order
	Stale       []model.Order
	Next        int64
	Created     []*model.Order
	BindCalls   []BindCall
	StatusCalls []StatusCall
}

// Create tracks invocations and returns configured responses.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *order
	stored.ID = s.Next
	s.Next++
	s.Created = append(s.Created, &stored)
	s.Orders = append(s.Orders, stored)
	return &stored, nil
}

// GetByID returns matched order either via override or stored slice.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	for _, o := range s.Orders {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrOrderNotFound
}

// GetByNumber returns matched order either via override or stored slice.
func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	if s.GetByNumberFn != nil {
		return s.GetByNumberFn(ctx, number)
	}
	for _, o := range s.Orders {
		if o.Number == number {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrOrderNotFound
}

// GetByProviderRef resolves an order from a bound session reference.
func (s *OrderRepositoryStub) GetByProviderRef(ctx context.Context, provider model.Provider, ref string) (*model.Order, error) {
	if s.GetByProviderRefFn != nil {
		return s.GetByProviderRefFn(ctx, provider, ref)
	}
	for _, o := range s.Orders {
		if bound := o.ProviderRef(provider); bound != nil && *bound == ref {
			order := o
			return &order, nil
		}
		if o.Number == ref {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrOrderNotFound
}

// ListByUser returns orders from configured slice.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	var out []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// BindProviderSession records bind invocations.
func (s *OrderRepositoryStub) BindProviderSession(ctx context.Context, orderID int64, provider model.Provider, ref string) error {
	if s.BindFn != nil {
		return s.BindFn(ctx, orderID, provider, ref)
	}
	s.BindCalls = append(s.BindCalls, BindCall{OrderID: orderID, Provider: provider, Ref: ref})
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			v := ref
			switch provider {
			case model.ProviderCard:
				s.Orders[i].CardSessionID = &v
			case model.ProviderWallet:
				s.Orders[i].WalletOrderID = &v
			}
		}
	}
	return nil
}

// UpdateStatus records update invocations.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status)
	}
	s.StatusCalls = append(s.StatusCalls, StatusCall{OrderID: orderID, Status: status})
	return nil
}

// SelectStalePending returns configured stale orders.
func (s *OrderRepositoryStub) SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	if s.SelectStalePendingFn != nil {
		return s.SelectStalePendingFn(ctx, olderThan, limit)
	}
	if limit < len(s.Stale) {
		return s.Stale[:limit], nil
	}
	return s.Stale, nil
}

// ArtworkRepositoryStub serves artworks from a fixed map.
type ArtworkRepositoryStub struct {
	Artworks map[int64]*model.Artwork
	Err      error
}

// NewArtworkRepositoryStub constructs stub with initialized map.
func NewArtworkRepositoryStub(items ...*model.Artwork) *ArtworkRepositoryStub {
	s := &ArtworkRepositoryStub{Artworks: make(map[int64]*model.Artwork)}
	for _, a := range items {
		s.Artworks[a.ID] = a
	}
	return s
}

// GetByID fetches artwork or returns not found.
func (s *ArtworkRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Artwork, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if a, ok := s.Artworks[id]; ok {
		return a, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByIDs fetches all requested artworks; any missing one fails the call.
func (s *ArtworkRepositoryStub) ListByIDs(ctx context.Context, ids []int64) ([]model.Artwork, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Artwork, 0, len(ids))
	for _, id := range ids {
		a, ok := s.Artworks[id]
		if !ok {
			return nil, domainErrors.ErrNotFound
		}
		out = append(out, *a)
	}
	return out, nil
}

// ArtistRepositoryStub serves artist statistics.
type ArtistRepositoryStub struct {
	Artists map[int64]*model.Artist
	Err     error
}

// GetStats fetches artist stats or returns not found.
func (s *ArtistRepositoryStub) GetStats(ctx context.Context, artistID int64) (*model.Artist, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if a, ok := s.Artists[artistID]; ok {
		return a, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SettlementRepositoryStub lets tests control settlement outcomes.
type SettlementRepositoryStub struct {
	ApplySuccessFn func(context.Context, int64, []model.Sale) (*model.SettlementResult, error)
	ApplyFailureFn func(context.Context, int64) (*model.SettlementResult, error)
	ApplyRefundFn  func(context.Context, int64) (*model.SettlementResult, error)

	SuccessCalls [][]model.Sale
	FailureCalls []int64
	RefundCalls  []int64
	Sales        []model.Sale
}

// ApplySuccess records the sale rows and returns a completed result.
func (s *SettlementRepositoryStub) ApplySuccess(ctx context.Context, orderID int64, sales []model.Sale) (*model.SettlementResult, error) {
	if s.ApplySuccessFn != nil {
		return s.ApplySuccessFn(ctx, orderID, sales)
	}
	s.SuccessCalls = append(s.SuccessCalls, sales)
	txIDs := make([]string, 0, len(sales))
	for _, sale := range sales {
		txIDs = append(txIDs, sale.TransactionID)
	}
	return &model.SettlementResult{OrderID: orderID, PaymentStatus: model.PaymentStatusCompleted, SaleTxIDs: txIDs}, nil
}

// ApplyFailure records the invocation and returns a failed result.
func (s *SettlementRepositoryStub) ApplyFailure(ctx context.Context, orderID int64) (*model.SettlementResult, error) {
	if s.ApplyFailureFn != nil {
		return s.ApplyFailureFn(ctx, orderID)
	}
	s.FailureCalls = append(s.FailureCalls, orderID)
	return &model.SettlementResult{OrderID: orderID, PaymentStatus: model.PaymentStatusFailed}, nil
}

// ApplyRefund records the invocation and returns a refunded result.
func (s *SettlementRepositoryStub) ApplyRefund(ctx context.Context, orderID int64) (*model.SettlementResult, error) {
	if s.ApplyRefundFn != nil {
		return s.ApplyRefundFn(ctx, orderID)
	}
	s.RefundCalls = append(s.RefundCalls, orderID)
	return &model.SettlementResult{OrderID: orderID, PaymentStatus: model.PaymentStatusRefunded}, nil
}

// ListSalesByOrder returns configured sale rows.
func (s *SettlementRepositoryStub) ListSalesByOrder(ctx context.Context, orderID int64) ([]model.Sale, error) {
	return s.Sales, nil
}
