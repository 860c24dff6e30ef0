package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// tickingClock returns a clock advancing one second per call.
func tickingClock(start time.Time) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return start.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

// panickyStore panics when asked about one name.
type panickyStore struct {
	*memStore
	name string
}

func (s panickyStore) FindExact(ctx context.Context, name string) (*models.Product, error) {
	if name == s.name {
		panic("malformed record")
	}
	return s.memStore.FindExact(ctx, name)
}

func TestReconciler_IntraBatchChaining(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cache := NewCache(store, nil)
	r := NewReconciler(store, cache, DefaultThreshold, WithClock(tickingClock(t0)))

	count := r.Reconcile(ctx, "Lawson", []Item{
		{Name: "Coca Cola 500ml", Price: price(100)},
		{Name: "Coca Cola 500mL", Price: price(150)},
	})

	assert.Equal(t, 2, count)
	require.Equal(t, 1, store.count())
	p := store.byName("Coca Cola 500ml")
	require.NotNil(t, p)
	assert.Equal(t, []string{"Coca Cola 500mL"}, []string(p.Aliases))
	assert.True(t, decimal.NewFromInt(150).Equal(p.Prices["Lawson"].Price))
	assert.Equal(t, int64(1), store.listCalls.Load(), "second item matched the locally appended entry")
}

func TestReconciler_ChainingDependsOnThreshold(t *testing.T) {
	items := []Item{
		{Name: "Cocacola", Price: price(100)},
		{Name: "Coca Cola", Price: price(150)},
	}

	// Similarity("Coca Cola", "Cocacola") is 14/17, below the default threshold.
	store := newMemStore()
	r := NewReconciler(store, NewCache(store, nil), DefaultThreshold, WithClock(tickingClock(t0)))
	assert.Equal(t, 2, r.Reconcile(context.Background(), "Lawson", items))
	assert.Equal(t, 2, store.count())

	store = newMemStore()
	r = NewReconciler(store, NewCache(store, nil), 0.8, WithClock(tickingClock(t0)))
	assert.Equal(t, 2, r.Reconcile(context.Background(), "Lawson", items))
	require.Equal(t, 1, store.count())
	p := store.byName("Cocacola")
	require.NotNil(t, p)
	assert.Equal(t, []string{"Coca Cola"}, []string(p.Aliases))
}

func TestReconciler_PartialFailureIsolation(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store, NewCache(store, nil), DefaultThreshold, WithClock(tickingClock(t0)))

	count := r.Reconcile(context.Background(), "FamilyMart", []Item{
		{Name: "ファミチキ", Price: price(220)},
		{Name: "Broken"},
		{Name: "からあげ棒", Price: price(180)},
	})

	assert.Equal(t, 2, count)
	assert.NotNil(t, store.byName("ファミチキ"))
	assert.NotNil(t, store.byName("からあげ棒"))
	assert.Nil(t, store.byName("Broken"))
}

func TestReconciler_ItemErrorsAndPanicsAreSkipped(t *testing.T) {
	mem := newMemStore()
	mem.findErr["Flaky"] = errors.New("connection reset")
	store := panickyStore{memStore: mem, name: "Explodes"}
	r := NewReconciler(store, NewCache(store, nil), DefaultThreshold, WithClock(tickingClock(t0)))

	count := r.Reconcile(context.Background(), "Lawson", []Item{
		{Name: "Pocky", Price: price(120)},
		{Name: "Flaky", Price: price(1)},
		{Name: "Explodes", Price: price(2)},
		{Name: "プリン", Price: price(150)},
	})

	assert.Equal(t, 2, count)
	assert.Equal(t, 2, mem.count())
}

func TestReconciler_InvalidatesCacheAfterBatch(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	cache := NewCache(store, nil)
	r := NewReconciler(store, cache, DefaultThreshold)

	_, err := cache.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), cache.Reloads())

	r.Reconcile(ctx, "Lawson", []Item{{Name: "Coca Cola", Price: price(150)}})
	assert.False(t, cache.Loaded())

	_, err = cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cache.Reloads())

	// Even a batch that writes nothing invalidates.
	r.Reconcile(ctx, "Lawson", nil)
	assert.False(t, cache.Loaded())
}

func TestReconciler_InvalidationReachesOtherReplicas(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	gen := &counterGeneration{}
	local := NewCache(store, gen)
	remote := NewCache(store, gen)

	_, err := remote.Snapshot(ctx)
	require.NoError(t, err)

	NewReconciler(store, local, DefaultThreshold).Reconcile(ctx, "Lawson", []Item{{Name: "Pocky", Price: price(120)}})

	entries, err := remote.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, int64(2), remote.Reloads())
}

func TestReconciler_StoreUnavailable(t *testing.T) {
	store := newMemStore()
	store.unavailable = true
	r := NewReconciler(store, NewCache(store, nil), DefaultThreshold)

	count := r.Reconcile(context.Background(), "Lawson", []Item{
		{Name: "Pocky", Price: price(120)},
		{Name: "プリン", Price: price(150)},
	})
	assert.Equal(t, 0, count)
}

func TestReconciler_EnsuresIndexesOnce(t *testing.T) {
	store := newMemStore()
	store.indexErr = errors.New("permission denied")
	r := NewReconciler(store, NewCache(store, nil), DefaultThreshold)

	for i := 0; i < 3; i++ {
		r.Reconcile(context.Background(), "Lawson", []Item{{Name: "Pocky", Price: price(120)}})
	}

	assert.Equal(t, int64(1), store.indexCalls.Load())
	assert.Equal(t, 1, store.count(), "index failure is not fatal")
}

func TestReconciler_ConcurrentBatchesKeepOneProductPerName(t *testing.T) {
	store := newMemStore()
	cache := NewCache(store, nil)
	r := NewReconciler(store, cache, DefaultThreshold)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Reconcile(context.Background(), "Lawson", []Item{
				{Name: "Pocky", Price: price(120)},
				{Name: "プリン", Price: price(150)},
			})
		}()
	}
	wg.Wait()

	// Losing inserts hit the unique name and are skipped.
	assert.Equal(t, 2, store.count())
}
