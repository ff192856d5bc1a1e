package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UsageInWindow returns the total quantity a user has taken of an item since
// the given instant (inclusive). It is the same aggregate the take path
// checks, exposed read-only for the scan endpoint and reporting.
func UsageInWindow(ctx context.Context, db *sql.DB, userID, itemID int64, since time.Time) (int, error) {
	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM consumption_records
		 WHERE user_id = ? AND item_id = ? AND taken_at >= ?`,
		userID, itemID, since.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing window usage: %w", err)
	}
	return total, nil
}

// UserHasRecords reports whether a user owns any consumption records.
// User deletion is refused while this holds, to preserve audit integrity.
func UserHasRecords(ctx context.Context, db *sql.DB, userID int64) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM consumption_records WHERE user_id = ?)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user records: %w", err)
	}
	return exists == 1, nil
}
