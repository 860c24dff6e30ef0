package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// ReceiptStatus is the processing state of an uploaded receipt.
type ReceiptStatus string

const (
	ReceiptStatusPending ReceiptStatus = "PENDING"
	ReceiptStatusSuccess ReceiptStatus = "SUCCESS"
	ReceiptStatusFailed  ReceiptStatus = "FAILED"
)

// Receipt is one upload attempt by a user.
// Store, total and product counts are only filled on success.
type Receipt struct {
	ID              string          `db:"id" json:"receiptId"`
	UserID          string          `db:"user_id" json:"-"`
	SubmittedAt     time.Time       `db:"submitted_at" json:"submittedAt"`
	Status          ReceiptStatus   `db:"status" json:"status"`
	StoreName       *string         `db:"store_name" json:"storeName"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Result          types.JSONText  `db:"result" json:"result"`
	ProductsFound   int             `db:"products_found" json:"productsFound"`
	ProductsUpdated int             `db:"products_updated" json:"productsUpdated"`
	ImageURL        *string         `db:"image_url" json:"imageUrl,omitempty"`
}

// ReceiptUpdate is the final state written to a pending receipt.
type ReceiptUpdate struct {
	Status          ReceiptStatus
	Result          interface{}
	StoreName       string
	TotalAmount     decimal.Decimal
	ProductsFound   int
	ProductsUpdated int
	ImageURL        string
}
