package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

// Reasons for adjustments synthesized by the item create/edit flows.
const (
	ReasonInitialStock = "Initial stock"
	ReasonManualEdit   = "Manual adjustment by admin"
)

// AdjustParams describes a signed stock correction on admin authority.
type AdjustParams struct {
	ItemID       int64
	Change       int
	Reason       string
	ActingUserID int64
	Now          time.Time
}

// Adjust atomically applies a signed delta to an item's stock and appends an
// audit entry. This is the only write path for items.stock besides Take; the
// item create/edit flows funnel their implicit stock changes through it.
// Fails with ValidationError on a zero change, NotFoundError on a missing
// item, and NegativeStockError when the result would be below zero.
func Adjust(ctx context.Context, db *sql.DB, p AdjustParams) (*model.Adjustment, error) {
	if p.Change == 0 {
		return nil, ValidationError{Msg: "change must be non-zero"}
	}
	if p.Reason == "" {
		p.Reason = ReasonManualEdit
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var stock int
	err = tx.QueryRowContext(ctx,
		`SELECT stock FROM items WHERE id = ? AND deleted_at IS NULL`,
		p.ItemID,
	).Scan(&stock)
	if err == sql.ErrNoRows {
		return nil, NotFoundError{Entity: "item"}
	}
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}

	if stock+p.Change < 0 {
		return nil, NegativeStockError{Current: stock, Change: p.Change}
	}

	// Guarded update, re-validated at commit time like the take path.
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock + ? >= 0`,
		p.Change, p.ItemID, p.Change,
	)
	if err != nil {
		return nil, fmt.Errorf("adjusting stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking adjustment: %w", err)
	}
	if affected == 0 {
		return nil, NegativeStockError{Current: stock, Change: p.Change}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO stock_adjustments (item_id, change, reason, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ItemID, p.Change, p.Reason, p.ActingUserID, p.Now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording adjustment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing adjustment: %w", err)
	}

	adjustmentID, _ := result.LastInsertId()
	return store.GetAdjustment(ctx, db, adjustmentID)
}
