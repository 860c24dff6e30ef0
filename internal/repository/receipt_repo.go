package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

const receiptColumns = "id, user_id, submitted_at, status, store_name, total_amount, result, products_found, products_updated, image_url"

// ReceiptRepository handles data access for receipt uploads.
type ReceiptRepository struct {
	db *sqlx.DB
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db *sqlx.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts a PENDING receipt for userID.
func (r *ReceiptRepository) Create(ctx context.Context, userID string) (*models.Receipt, error) {
	rec := &models.Receipt{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: models.ReceiptStatusPending,
	}

	const q = `INSERT INTO receipts (id, user_id, status)
        VALUES ($1, $2, $3)
        RETURNING submitted_at, total_amount, result, products_found, products_updated`

	err := r.db.QueryRowxContext(ctx, q, rec.ID, rec.UserID, rec.Status).
		Scan(&rec.SubmittedAt, &rec.TotalAmount, &rec.Result, &rec.ProductsFound, &rec.ProductsUpdated)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateStatus finalizes a PENDING receipt. Store, total and counts are only
// written on success; receipts already finalized are left untouched. An
// archived image URL is recorded whatever the status.
func (r *ReceiptRepository) UpdateStatus(ctx context.Context, id string, upd models.ReceiptUpdate) error {
	result, err := json.Marshal(upd.Result)
	if err != nil {
		return fmt.Errorf("encode receipt result: %w", err)
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("receipts")

	sets := []string{
		ub.Assign("status", string(upd.Status)),
		fmt.Sprintf("result = %s::jsonb", ub.Var(string(result))),
	}
	if upd.ImageURL != "" {
		sets = append(sets, ub.Assign("image_url", upd.ImageURL))
	}
	if upd.Status == models.ReceiptStatusSuccess {
		sets = append(sets,
			ub.Assign("store_name", upd.StoreName),
			ub.Assign("total_amount", upd.TotalAmount),
			ub.Assign("products_found", upd.ProductsFound),
			ub.Assign("products_updated", upd.ProductsUpdated),
		)
	}

	ub.Set(sets...)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("status", string(models.ReceiptStatusPending)),
	)

	query, args := ub.Build()
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByUser returns a user's receipts submitted in [from, to), newest first.
func (r *ReceiptRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]models.Receipt, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(receiptColumns)
	sb.From("receipts")
	sb.Where(
		sb.Equal("user_id", userID),
		sb.GreaterEqualThan("submitted_at", from),
		sb.LessThan("submitted_at", to),
	)
	sb.OrderBy("submitted_at").Desc()

	query, args := sb.Build()
	receipts := []models.Receipt{}
	if err := r.db.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, err
	}
	return receipts, nil
}
