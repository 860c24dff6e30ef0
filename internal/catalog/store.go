package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// Entry is the projection of a product used for fuzzy comparison.
type Entry struct {
	ID      string   `db:"id" json:"id"`
	Name    string   `db:"name" json:"name"`
	Aliases []string `db:"aliases" json:"aliases"`
}

// Item is one extracted receipt line.
type Item struct {
	Name        string           `json:"name"`
	EnglishName *string          `json:"english_name"`
	Price       *decimal.Decimal `json:"price"`
}

// Update describes the changes applied to a matched product.
// Price fields are written only when SetPrice is true; Alias is ignored when empty.
type Update struct {
	SetPrice    bool
	Store       string
	Price       decimal.Decimal
	Date        time.Time
	EnglishName *string
	Alias       string
}

// Empty reports whether the update carries no change.
func (u Update) Empty() bool {
	return !u.SetPrice && u.Alias == ""
}

// Match is a resolved product with the confidence of the decision.
type Match struct {
	Product    *models.Product
	Confidence float64
	Fuzzy      bool
}

// EntryLoader loads the full fuzzy-comparison projection of the catalog.
type EntryLoader interface {
	ListEntries(ctx context.Context) ([]Entry, error)
}

// Store is the persistence contract of the catalog engine.
// Lookups return (nil, nil) when nothing matches.
type Store interface {
	EntryLoader
	FindExact(ctx context.Context, name string) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	ApplyUpdate(ctx context.Context, id string, u Update) error
	EnsureIndexes(ctx context.Context) error
}

// GenerationSource is a shared counter bumped whenever any replica invalidates
// its catalog cache.
type GenerationSource interface {
	Current(ctx context.Context) (int64, error)
	Bump(ctx context.Context) (int64, error)
}
