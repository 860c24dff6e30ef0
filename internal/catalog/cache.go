package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/metrics"
)

type snapshot struct {
	entries    []Entry
	generation int64
}

// Cache holds an immutable snapshot of catalog entries for fuzzy matching.
// Readers never lock; a published snapshot is never mutated. Reloads and
// appends are serialized by a writer mutex and publish a new snapshot.
// There is no expiry: the snapshot lives until Invalidate is called.
type Cache struct {
	loader EntryLoader
	gen    GenerationSource

	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	reloads atomic.Int64
}

// NewCache creates a Cache backed by loader. gen may be nil, in which case
// invalidation is local to this process.
func NewCache(loader EntryLoader, gen GenerationSource) *Cache {
	return &Cache{loader: loader, gen: gen}
}

// Snapshot returns the current entries, loading them from the store when no
// snapshot exists or when another replica bumped the shared generation.
// The returned slice must not be modified.
func (c *Cache) Snapshot(ctx context.Context) ([]Entry, error) {
	if s := c.current.Load(); s != nil && c.fresh(ctx, s) {
		return s.entries, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.current.Load(); s != nil && c.fresh(ctx, s) {
		return s.entries, nil
	}

	gen := c.generation(ctx)
	entries, err := c.loader.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog entries: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	c.current.Store(&snapshot{entries: entries, generation: gen})
	c.reloads.Add(1)
	metrics.CatalogCacheReloads.Inc()
	log.Debug().Int("entries", len(entries)).Int64("generation", gen).Msg("Catalog cache reloaded")
	return entries, nil
}

// AppendLocal adds a freshly inserted product to the current snapshot, if any.
// The store is not touched.
func (c *Cache) AppendLocal(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current.Load()
	if s == nil {
		return
	}

	entries := make([]Entry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	entries = append(entries, Entry{ID: id, Name: name, Aliases: []string{}})
	c.current.Store(&snapshot{entries: entries, generation: s.generation})
}

// Invalidate drops the local snapshot. The next Snapshot call reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current.Store(nil)
	c.mu.Unlock()
}

// InvalidateAll drops the local snapshot and bumps the shared generation so
// other replicas reload too. A generation failure is logged, not returned.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.Invalidate()
	if c.gen == nil {
		return
	}
	if _, err := c.gen.Bump(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to bump catalog generation")
	}
}

// Reloads returns how many times the snapshot was loaded from the store.
func (c *Cache) Reloads() int64 {
	return c.reloads.Load()
}

// Loaded reports whether a snapshot is currently held.
func (c *Cache) Loaded() bool {
	return c.current.Load() != nil
}

func (c *Cache) fresh(ctx context.Context, s *snapshot) bool {
	if c.gen == nil {
		return true
	}
	g, err := c.gen.Current(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read catalog generation, keeping local snapshot")
		return true
	}
	return g == s.generation
}

func (c *Cache) generation(ctx context.Context) int64 {
	if c.gen == nil {
		return 0
	}
	g, err := c.gen.Current(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read catalog generation")
		return 0
	}
	return g
}
