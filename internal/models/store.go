package models

import "time"

// Store is a retail chain receipts can be submitted for.
type Store struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// DefaultStores seeds an empty stores table.
var DefaultStores = []string{
	"FamilyMart", "Lawson", "7-Eleven",
	"Seicomart", "AEON", "Co-op", "Satudora",
}
