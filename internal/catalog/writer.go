package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// Outcome is the effect of upserting one item.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// Writer creates or updates the product an item resolves to.
type Writer struct {
	store     Store
	cache     *Cache
	resolver  *Resolver
	threshold float64
}

// NewWriter creates a Writer.
func NewWriter(store Store, cache *Cache, resolver *Resolver, threshold float64) *Writer {
	return &Writer{store: store, cache: cache, resolver: resolver, threshold: threshold}
}

// Upsert records item's price at store. Items without a name or price are
// skipped. An unavailable store makes the call a no-op.
func (w *Writer) Upsert(ctx context.Context, store string, item Item, now time.Time) (Outcome, error) {
	if item.Name == "" || item.Price == nil {
		return OutcomeSkipped, nil
	}

	match, found, err := w.resolver.Resolve(ctx, item.Name, w.threshold)
	if err != nil {
		return OutcomeSkipped, err
	}
	if !found {
		return w.create(ctx, store, item, now)
	}
	return w.update(ctx, store, item, match, now)
}

func (w *Writer) create(ctx context.Context, store string, item Item, now time.Time) (Outcome, error) {
	p := &models.Product{
		ID:          uuid.NewString(),
		Name:        item.Name,
		EnglishName: item.EnglishName,
		Aliases:     []string{},
		Prices: models.Prices{
			store: {Price: *item.Price, Date: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := w.store.Insert(ctx, p); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("insert product %q: %w", item.Name, err)
	}

	w.cache.AppendLocal(p.ID, p.Name)
	return OutcomeCreated, nil
}

func (w *Writer) update(ctx context.Context, store string, item Item, match Match, now time.Time) (Outcome, error) {
	p := match.Product

	var u Update
	if priceUpdatable(p.Prices, store, now) {
		u.SetPrice = true
		u.Store = store
		u.Price = *item.Price
		u.Date = now
		u.EnglishName = item.EnglishName
	}
	if match.Fuzzy && item.Name != p.Name && !slices.Contains(p.Aliases, item.Name) {
		u.Alias = item.Name
	}

	if u.Empty() {
		return OutcomeSkipped, nil
	}

	if err := w.store.ApplyUpdate(ctx, p.ID, u); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("update product %s: %w", p.ID, err)
	}
	return OutcomeUpdated, nil
}

// priceUpdatable reports whether a price observed at now may replace the one
// stored for store. A price stamped at or after now is kept.
func priceUpdatable(prices models.Prices, store string, now time.Time) bool {
	entry, ok := prices[store]
	if !ok || entry.Date.IsZero() {
		return true
	}
	return entry.Date.Before(now)
}
