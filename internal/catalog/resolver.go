package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// DefaultThreshold is the minimum similarity for a fuzzy match.
const DefaultThreshold = 0.85

// Resolver maps an input name to an existing product, exact match first.
type Resolver struct {
	store Store
	cache *Cache
}

// NewResolver creates a Resolver.
func NewResolver(store Store, cache *Cache) *Resolver {
	return &Resolver{store: store, cache: cache}
}

// Resolve looks name up by exact name or alias, then fuzzily against the cache
// snapshot. found is false when no product scores at least threshold.
// An unavailable store yields no match and no error.
func (r *Resolver) Resolve(ctx context.Context, name string, threshold float64) (Match, bool, error) {
	p, err := r.store.FindExact(ctx, name)
	if err != nil && !errors.Is(err, ErrStoreUnavailable) {
		return Match{}, false, fmt.Errorf("exact lookup %q: %w", name, err)
	}
	if p != nil {
		return Match{Product: p, Confidence: 1.0}, true, nil
	}

	entries, err := r.cache.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return Match{}, false, nil
		}
		return Match{}, false, err
	}

	idx, score := bestEntry(name, entries, threshold)
	if idx < 0 || score < threshold {
		return Match{}, false, nil
	}

	p, err = r.load(ctx, entries[idx])
	if err != nil {
		return Match{}, false, err
	}
	if p == nil {
		log.Warn().Str("product_id", entries[idx].ID).Str("name", entries[idx].Name).
			Msg("Fuzzy match no longer in store")
		return Match{}, false, nil
	}
	return Match{Product: p, Confidence: score, Fuzzy: true}, true, nil
}

// load re-reads a cached entry to get its current prices. Entries appended
// locally may not be visible by id yet, so the name is tried as well.
func (r *Resolver) load(ctx context.Context, e Entry) (*models.Product, error) {
	if e.ID != "" {
		p, err := r.store.GetByID(ctx, e.ID)
		if err != nil && !errors.Is(err, ErrStoreUnavailable) {
			return nil, fmt.Errorf("load product %s: %w", e.ID, err)
		}
		if p != nil {
			return p, nil
		}
	}
	p, err := r.store.FindExact(ctx, e.Name)
	if err != nil && !errors.Is(err, ErrStoreUnavailable) {
		return nil, fmt.Errorf("load product %q: %w", e.Name, err)
	}
	return p, nil
}

// bestEntry scores every entry against input and returns the index of the
// first entry with the greatest score. Aliases are scored only when the name
// alone falls below threshold.
func bestEntry(input string, entries []Entry, threshold float64) (int, float64) {
	bestIdx, best := -1, 0.0
	for i, e := range entries {
		score := Similarity(input, e.Name)
		if score < threshold {
			for _, alias := range e.Aliases {
				if s := Similarity(input, alias); s > score {
					score = s
				}
			}
		}
		if score > best {
			bestIdx, best = i, score
		}
	}
	return bestIdx, best
}
