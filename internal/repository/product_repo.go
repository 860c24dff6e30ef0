package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/wweverma1/pocket-ninja-backend/internal/catalog"
	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

const productColumns = `id, name, english_name, aliases, prices, created_at, updated_at`

// catalogIndexes mirror the migration so a database created without it
// still gets the lookup indexes.
var catalogIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS products_name_key ON products (name)`,
	`CREATE INDEX IF NOT EXISTS products_aliases_gin ON products USING GIN (aliases)`,
	`CREATE INDEX IF NOT EXISTS products_prices_gin ON products USING GIN (prices)`,
}

// ProductRepository handles data access for the product catalog.
// It implements catalog.Store; a nil db makes every call return
// catalog.ErrStoreUnavailable.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindExact returns the product named name or carrying name as an alias.
// It returns nil, nil when there is none.
func (r *ProductRepository) FindExact(ctx context.Context, name string) (*models.Product, error) {
	if r.db == nil {
		return nil, catalog.ErrStoreUnavailable
	}

	const q = `SELECT ` + productColumns + ` FROM products
        WHERE name = $1 OR aliases @> ARRAY[$1]::text[]
        ORDER BY created_at, id
        LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetByID returns a product by id, or nil, nil when it does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if r.db == nil {
		return nil, catalog.ErrStoreUnavailable
	}

	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListEntries returns the id, name and aliases of every product in creation order.
func (r *ProductRepository) ListEntries(ctx context.Context) ([]catalog.Entry, error) {
	if r.db == nil {
		return nil, catalog.ErrStoreUnavailable
	}

	const q = `SELECT id, name, aliases FROM products ORDER BY created_at, id`

	rows, err := r.db.QueryxContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []catalog.Entry{}
	for rows.Next() {
		var (
			e       catalog.Entry
			aliases pq.StringArray
		)
		if err := rows.Scan(&e.ID, &e.Name, &aliases); err != nil {
			return nil, err
		}
		e.Aliases = []string(aliases)
		if e.Aliases == nil {
			e.Aliases = []string{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Insert creates a product. A name collision returns catalog.ErrDuplicateProduct.
func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) error {
	if r.db == nil {
		return catalog.ErrStoreUnavailable
	}

	aliases := p.Aliases
	if aliases == nil {
		aliases = pq.StringArray{}
	}

	const q = `INSERT INTO products (id, name, english_name, aliases, prices, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, q,
		p.ID,
		p.Name,
		p.EnglishName,
		aliases,
		p.Prices,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", catalog.ErrDuplicateProduct, p.Name)
	}
	return err
}

// ApplyUpdate writes the price entry and alias described by u in one statement.
// A stored price entry is only replaced by a strictly newer one, and the English
// name only changes together with it. An alias equal to the name or already
// present is not appended.
func (r *ProductRepository) ApplyUpdate(ctx context.Context, id string, u catalog.Update) error {
	if r.db == nil {
		return catalog.ErrStoreUnavailable
	}
	if u.Empty() {
		return nil
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("products")

	sets := []string{"updated_at = NOW()"}

	if u.SetPrice {
		patch, err := json.Marshal(models.Prices{u.Store: {Price: u.Price, Date: u.Date}})
		if err != nil {
			return fmt.Errorf("encode price entry: %w", err)
		}
		store := ub.Var(u.Store)
		newer := fmt.Sprintf(
			`prices -> %s::text IS NULL OR (prices -> %s::text ->> 'date')::timestamptz < %s::timestamptz`,
			store, store, ub.Var(u.Date))
		sets = append(sets,
			fmt.Sprintf(`prices = CASE WHEN %s THEN prices || %s::jsonb ELSE prices END`,
				newer, ub.Var(string(patch))),
			fmt.Sprintf(`english_name = CASE WHEN %s THEN %s ELSE english_name END`,
				newer, ub.Var(u.EnglishName)),
		)
	}

	if u.Alias != "" {
		alias := ub.Var(u.Alias)
		sets = append(sets, fmt.Sprintf(
			`aliases = CASE WHEN name = %s OR aliases @> ARRAY[%s]::text[] THEN aliases ELSE array_append(aliases, %s) END`,
			alias, alias, alias))
	}

	ub.Set(sets...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

// EnsureIndexes creates the catalog lookup indexes if they are missing.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	if r.db == nil {
		return catalog.ErrStoreUnavailable
	}
	for _, stmt := range catalogIndexes {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
