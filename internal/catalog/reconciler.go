package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/metrics"
)

// Reconciler folds the items of one receipt into the product catalog.
// Batches may run concurrently; items within a batch run in order.
type Reconciler struct {
	store  Store
	cache  *Cache
	writer *Writer
	clock  func() time.Time

	indexOnce sync.Once
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the time source used to stamp prices.
func WithClock(clock func() time.Time) Option {
	return func(r *Reconciler) {
		r.clock = clock
	}
}

// NewReconciler wires a resolver and writer over store and cache.
// A threshold <= 0 selects DefaultThreshold.
func NewReconciler(store Store, cache *Cache, threshold float64, opts ...Option) *Reconciler {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	r := &Reconciler{
		store:  store,
		cache:  cache,
		writer: NewWriter(store, cache, NewResolver(store, cache), threshold),
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile upserts items for storeName in order and returns how many were
// created or updated. Item failures are logged and counted as skipped. The
// catalog cache is invalidated when the batch ends, whatever happened.
func (r *Reconciler) Reconcile(ctx context.Context, storeName string, items []Item) int {
	start := time.Now()
	r.ensureIndexes(ctx)

	defer func() {
		r.cache.InvalidateAll(context.WithoutCancel(ctx))
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	count := 0
	for i, item := range items {
		outcome, err := r.upsert(ctx, storeName, item)
		if err != nil {
			log.Error().Err(err).
				Str("store", storeName).
				Int("item", i).
				Str("name", item.Name).
				Msg("Failed to reconcile receipt item")
			metrics.ReconcileItemsTotal.WithLabelValues("failed").Inc()
			continue
		}
		metrics.ReconcileItemsTotal.WithLabelValues(outcome.String()).Inc()
		if outcome == OutcomeCreated || outcome == OutcomeUpdated {
			count++
		}
	}

	log.Info().
		Str("store", storeName).
		Int("items", len(items)).
		Int("updated", count).
		Dur("duration", time.Since(start)).
		Msg("Receipt items reconciled")
	return count
}

func (r *Reconciler) upsert(ctx context.Context, storeName string, item Item) (outcome Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome, err = OutcomeSkipped, fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.writer.Upsert(ctx, storeName, item, r.clock())
}

// ensureIndexes creates the catalog indexes once per Reconciler. Failure is
// logged and the batch continues.
func (r *Reconciler) ensureIndexes(ctx context.Context) {
	r.indexOnce.Do(func() {
		if err := r.store.EnsureIndexes(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("Failed to ensure catalog indexes")
		}
	})
}
