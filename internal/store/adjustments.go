package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kantorid/persediaan/internal/model"
)

// GetAdjustment returns a stock adjustment by ID with item and user names
// resolved for display.
func GetAdjustment(ctx context.Context, db *sql.DB, id int64) (*model.Adjustment, error) {
	a := &model.Adjustment{}
	err := db.QueryRowContext(ctx,
		`SELECT a.id, a.item_id, a.change, a.reason, a.user_id, a.created_at,
		        i.name AS item_name, u.name AS user_name
		 FROM stock_adjustments a
		 JOIN items i ON i.id = a.item_id
		 JOIN users u ON u.id = a.user_id
		 WHERE a.id = ?`, id,
	).Scan(&a.ID, &a.ItemID, &a.Change, &a.Reason, &a.UserID, &a.CreatedAt,
		&a.ItemName, &a.UserName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting adjustment: %w", err)
	}
	return a, nil
}

// ListAdjustments returns an item's stock adjustments, newest first, with
// the total count for pagination.
func ListAdjustments(ctx context.Context, db *sql.DB, itemID int64, limit, offset int) ([]model.Adjustment, int, error) {
	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stock_adjustments WHERE item_id = ?`, itemID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting adjustments: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.item_id, a.change, a.reason, a.user_id, a.created_at,
		        i.name AS item_name, u.name AS user_name
		 FROM stock_adjustments a
		 JOIN items i ON i.id = a.item_id
		 JOIN users u ON u.id = a.user_id
		 WHERE a.item_id = ?
		 ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`,
		itemID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []model.Adjustment
	for rows.Next() {
		var a model.Adjustment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Change, &a.Reason, &a.UserID, &a.CreatedAt,
			&a.ItemName, &a.UserName); err != nil {
			return nil, 0, fmt.Errorf("scanning adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, total, rows.Err()
}
