package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

// TakeParams describes a request to take quantity units of an item.
// Now is injected by the caller, evaluated in the server's configured
// time zone; it anchors both the quota window and the record timestamp.
type TakeParams struct {
	UserID    int64
	ItemID    int64
	Quantity  int
	Photo     []byte
	PhotoMime string
	Notes     string
	Now       time.Time
}

// Take validates a take request and, if valid, atomically records the
// consumption and decrements the item's stock. Checks run in order and
// short-circuit with typed errors: ValidationError, NotFoundError,
// InsufficientStockError, QuotaExceededError. All reads and both writes
// happen in one transaction; the stock decrement re-validates availability
// at commit time so concurrent takes cannot drive stock negative.
func Take(ctx context.Context, db *sql.DB, p TakeParams) (*model.Record, error) {
	if p.Quantity <= 0 {
		return nil, ValidationError{Msg: "quantity must be a positive integer"}
	}
	if len(p.Photo) == 0 {
		return nil, ValidationError{Msg: "proof photo required"}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Load the item and its type's quota policy.
	var stock, limit int
	var period string
	err = tx.QueryRowContext(ctx,
		`SELECT i.stock, t.per_period_limit, t.period
		 FROM items i
		 JOIN consumption_types t ON t.id = i.type_id
		 WHERE i.id = ? AND i.deleted_at IS NULL`,
		p.ItemID,
	).Scan(&stock, &limit, &period)
	if err == sql.ErrNoRows {
		return nil, NotFoundError{Entity: "item"}
	}
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}

	if stock < p.Quantity {
		return nil, InsufficientStockError{Available: stock, Requested: p.Quantity}
	}

	// Sum this user's takes of this item inside the current quota window.
	// Timestamps are stored in UTC; the window boundary is inclusive.
	windowStart := WindowStart(period, p.Now).UTC()
	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM consumption_records
		 WHERE user_id = ? AND item_id = ? AND taken_at >= ?`,
		p.UserID, p.ItemID, windowStart,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("summing window usage: %w", err)
	}

	if taken+p.Quantity > limit {
		return nil, QuotaExceededError{
			Limit:     limit,
			Period:    period,
			Taken:     taken,
			Requested: p.Quantity,
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO consumption_records (user_id, item_id, quantity, photo, photo_mime, notes, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.ItemID, p.Quantity, p.Photo, p.PhotoMime, p.Notes, p.Now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	// Conditional decrement: re-validated at commit time, not just at the
	// read above. Zero rows affected means a concurrent take depleted the
	// stock between our read and this write.
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock >= ?`,
		p.Quantity, p.ItemID, p.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("decrementing stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking decrement: %w", err)
	}
	if affected == 0 {
		return nil, InsufficientStockError{Available: stock, Requested: p.Quantity}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing take: %w", err)
	}

	recordID, _ := result.LastInsertId()
	return store.GetRecord(ctx, db, recordID)
}
