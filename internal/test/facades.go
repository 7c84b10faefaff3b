package test

import (
	"context"
	"sync"
	"time"

	"github.com/artmarket/settlement/internal/domain/model"
)

// WorkerFacadeStub substitutes the application facade for worker tests.
// Batches are served one per poll; Lock/Unlock guard the recorded state.
type WorkerFacadeStub struct {
	sync.Mutex

	Batches  [][]model.Order
	StatusFn func(ctx context.Context, order model.Order) (*model.PaymentOutcome, error)
	SettleFn func(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error)

	StatusCalls []string
	Settled     []model.PaymentOutcome
}

// StalePendingOrders pops the next configured batch.
func (s *WorkerFacadeStub) StalePendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	s.Lock()
	defer s.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

// ProviderStatus records the query and applies the override.
func (s *WorkerFacadeStub) ProviderStatus(ctx context.Context, order model.Order) (*model.PaymentOutcome, error) {
	s.Lock()
	s.StatusCalls = append(s.StatusCalls, order.Number)
	fn := s.StatusFn
	s.Unlock()
	if fn != nil {
		return fn(ctx, order)
	}
	return nil, nil
}

// Settle records the outcome and applies the override.
func (s *WorkerFacadeStub) Settle(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error) {
	s.Lock()
	s.Settled = append(s.Settled, outcome)
	fn := s.SettleFn
	s.Unlock()
	if fn != nil {
		return fn(ctx, outcome)
	}
	return &model.SettlementResult{PaymentStatus: model.PaymentStatusCompleted}, nil
}
