package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers both in the API and in the prices JSONB column.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceEntry is the latest price seen for a product at one store.
type PriceEntry struct {
	Price decimal.Decimal `json:"price"`
	Date  time.Time       `json:"date"`
}

// Prices maps a store name to its latest price entry.
type Prices map[string]PriceEntry

// Value implements driver.Valuer for database storage
func (p Prices) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *Prices) Scan(value interface{}) error {
	if value == nil {
		*p = Prices{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Prices")
	}
	out := Prices{}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*p = out
	return nil
}

// Product is a canonical catalog entry. Name is fixed at creation; every
// other observed spelling accumulates in Aliases.
type Product struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	EnglishName *string        `db:"english_name" json:"englishName"`
	Aliases     pq.StringArray `db:"aliases" json:"aliases"`
	Prices      Prices         `db:"prices" json:"prices"`
	CreatedAt   time.Time      `db:"created_at" json:"-"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}
