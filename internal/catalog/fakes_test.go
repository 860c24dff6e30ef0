package catalog

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// memStore is an in-memory Store with a unique index on name.
type memStore struct {
	mu       sync.Mutex
	products []*models.Product

	unavailable bool
	findErr     map[string]error
	indexErr    error

	listCalls   atomic.Int64
	findCalls   atomic.Int64
	updateCalls atomic.Int64
	indexCalls  atomic.Int64
}

func newMemStore(products ...*models.Product) *memStore {
	s := &memStore{findErr: map[string]error{}}
	for _, p := range products {
		s.products = append(s.products, cloneProduct(p))
	}
	return s
}

func (s *memStore) FindExact(_ context.Context, name string) (*models.Product, error) {
	s.findCalls.Add(1)
	if s.unavailable {
		return nil, ErrStoreUnavailable
	}
	if err := s.findErr[name]; err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Name == name || slices.Contains(p.Aliases, name) {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.Product, error) {
	if s.unavailable {
		return nil, ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (s *memStore) ListEntries(_ context.Context) ([]Entry, error) {
	s.listCalls.Add(1)
	if s.unavailable {
		return nil, ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.products))
	for _, p := range s.products {
		entries = append(entries, Entry{ID: p.ID, Name: p.Name, Aliases: slices.Clone([]string(p.Aliases))})
	}
	return entries, nil
}

func (s *memStore) Insert(_ context.Context, p *models.Product) error {
	if s.unavailable {
		return ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Name == p.Name {
			return ErrDuplicateProduct
		}
	}
	s.products = append(s.products, cloneProduct(p))
	return nil
}

func (s *memStore) ApplyUpdate(_ context.Context, id string, u Update) error {
	s.updateCalls.Add(1)
	if s.unavailable {
		return ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID != id {
			continue
		}
		if u.SetPrice {
			if p.Prices == nil {
				p.Prices = models.Prices{}
			}
			p.Prices[u.Store] = models.PriceEntry{Price: u.Price, Date: u.Date}
			p.EnglishName = u.EnglishName
		}
		if u.Alias != "" && u.Alias != p.Name && !slices.Contains(p.Aliases, u.Alias) {
			p.Aliases = append(p.Aliases, u.Alias)
		}
		return nil
	}
	return errors.New("product not found")
}

func (s *memStore) EnsureIndexes(_ context.Context) error {
	s.indexCalls.Add(1)
	return s.indexErr
}

func (s *memStore) byName(name string) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Name == name {
			return cloneProduct(p)
		}
	}
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Aliases = slices.Clone(p.Aliases)
	if c.Aliases == nil {
		c.Aliases = []string{}
	}
	c.Prices = maps.Clone(p.Prices)
	return &c
}

// counterGeneration is an in-memory GenerationSource.
type counterGeneration struct {
	value atomic.Int64
	err   error
}

func (g *counterGeneration) Current(context.Context) (int64, error) {
	if g.err != nil {
		return 0, g.err
	}
	return g.value.Load(), nil
}

func (g *counterGeneration) Bump(context.Context) (int64, error) {
	if g.err != nil {
		return 0, g.err
	}
	return g.value.Add(1), nil
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strPtr(s string) *string {
	return &s
}
