package cache

import "context"

const catalogGenerationKey = "catalog:generation"

// CatalogGeneration is a shared counter bumped whenever an API replica
// invalidates its catalog snapshot. It implements catalog.GenerationSource.
type CatalogGeneration struct {
	counter Counter
}

// NewCatalogGeneration creates a new CatalogGeneration.
func NewCatalogGeneration(counter Counter) *CatalogGeneration {
	return &CatalogGeneration{counter: counter}
}

// Current returns the shared generation; zero before the first bump.
func (g *CatalogGeneration) Current(ctx context.Context) (int64, error) {
	return g.counter.GetInt(ctx, catalogGenerationKey)
}

// Bump advances the shared generation.
func (g *CatalogGeneration) Bump(ctx context.Context) (int64, error) {
	return g.counter.Incr(ctx, catalogGenerationKey)
}
