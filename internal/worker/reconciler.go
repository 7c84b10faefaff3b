package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/artmarket/settlement/internal/adapter/cardpay"
	"github.com/artmarket/settlement/internal/adapter/walletpay"
	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/domain/model"
)

// MarketFacade exposes the subset of application functionality required by the worker.
type MarketFacade interface {
	StalePendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error)
	ProviderStatus(ctx context.Context, order model.Order) (*model.PaymentOutcome, error)
	Settle(ctx context.Context, outcome model.PaymentOutcome) (*model.SettlementResult, error)
}

// Reconciler recovers orders whose webhook never arrived: it periodically
// queries the bound provider for pending orders past a grace period and
// feeds final outcomes into settlement. Overlap with a late webhook is
// harmless because settlement is idempotent.
type Reconciler struct {
	facade       MarketFacade
	pollInterval time.Duration
	grace        time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconciler constructs the reconciliation worker pool.
func NewReconciler(facade MarketFacade, pollInterval, grace time.Duration, batchSize, workers int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Reconciler{
		facade:       facade,
		pollInterval: pollInterval,
		grace:        grace,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reconciler) fetchAndDispatch(ctx context.Context) {
	orders, err := r.facade.StalePendingOrders(ctx, time.Now().Add(-r.grace), r.batchSize)
	if err != nil {
		r.logger.Error("fetch orders for reconciliation failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- order:
		}
	}
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-r.jobs:
			if !ok {
				return
			}
			r.reconcile(ctx, order)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context, order model.Order) {
	outcome, err := r.facade.ProviderStatus(ctx, order)
	if err != nil {
		var cardErr cardpay.TransientError
		var walletErr walletpay.TransientError
		switch {
		case errors.As(err, &cardErr):
			r.logger.Warn("cardpay throttled reconciliation", slog.Duration("retry_after", cardErr.RetryAfter))
			r.backoff(ctx, cardErr.RetryAfter)
		case errors.As(err, &walletErr):
			r.logger.Warn("walletpay unavailable for reconciliation", slog.String("order", order.Number))
		default:
			r.logger.Error("provider status fetch failed",
				slog.String("order", order.Number),
				slog.String("error", err.Error()))
		}
		return
	}
	if outcome == nil {
		// Still awaiting the customer; the next pass will look again.
		return
	}

	if _, err := r.facade.Settle(ctx, *outcome); err != nil {
		if errors.Is(err, domainErrors.ErrSettlementConflict) {
			// A concurrent webhook won the race; nothing left to do.
			return
		}
		r.logger.Error("reconciliation settlement failed",
			slog.String("order", order.Number),
			slog.String("error", err.Error()))
		return
	}
	r.logger.Info("order reconciled from provider status",
		slog.String("order", order.Number),
		slog.String("status", string(outcome.Status)))
}

// backoff pauses the worker for the provider's retry window but never
// outlives the run context, so Stop is not held up by a long Retry-After.
func (r *Reconciler) backoff(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
