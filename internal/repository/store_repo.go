package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// StoreRepository handles data access for supported stores.
type StoreRepository struct {
	db *sqlx.DB
}

// NewStoreRepository creates a new StoreRepository.
func NewStoreRepository(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// ListNames returns every store name, seeding the default stores when the
// table is empty. If seeding fails the defaults are returned as is.
func (r *StoreRepository) ListNames(ctx context.Context) ([]string, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM stores`); err != nil {
		return nil, err
	}

	if count == 0 {
		const seed = `INSERT INTO stores (name)
            SELECT unnest($1::text[])
            ON CONFLICT (name) DO NOTHING`
		if _, err := r.db.ExecContext(ctx, seed, pq.Array(models.DefaultStores)); err != nil {
			log.Error().Err(err).Msg("Failed to seed stores")
			return append([]string(nil), models.DefaultStores...), nil
		}
		log.Info().Int("count", len(models.DefaultStores)).Msg("Seeded stores with default values")
	}

	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM stores ORDER BY id`); err != nil {
		return nil, err
	}
	return names, nil
}

// AddIfNotExists registers a store name. Existing names are left untouched.
func (r *StoreRepository) AddIfNotExists(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	const q = `INSERT INTO stores (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, name)
	return err
}
