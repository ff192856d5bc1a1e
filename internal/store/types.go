package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kantorid/persediaan/internal/model"
)

// CreateType creates a new consumption type.
func CreateType(ctx context.Context, db *sql.DB, name, description string, limit int, period string) (*model.ConsumptionType, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO consumption_types (name, description, per_period_limit, period)
		 VALUES (?, ?, ?, ?)`,
		name, description, limit, period,
	)
	if err != nil {
		return nil, fmt.Errorf("creating consumption type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting consumption type id: %w", err)
	}

	return GetType(ctx, db, id)
}

// GetType returns a consumption type by ID.
func GetType(ctx context.Context, db *sql.DB, id int64) (*model.ConsumptionType, error) {
	t := &model.ConsumptionType{}
	var description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, per_period_limit, period, created_at, updated_at, deleted_at
		 FROM consumption_types WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &description, &t.Limit, &t.Period, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting consumption type: %w", err)
	}
	t.Description = description.String
	return t, nil
}

// ListTypes returns non-deleted consumption types matching the optional
// search term, newest first, with the total count for pagination.
func ListTypes(ctx context.Context, db *sql.DB, search string, limit, offset int) ([]model.ConsumptionType, int, error) {
	where := `WHERE deleted_at IS NULL`
	var args []any

	if search != "" {
		where += ` AND (name LIKE ? OR description LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consumption_types `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting consumption types: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, per_period_limit, period, created_at, updated_at, deleted_at
		 FROM consumption_types `+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing consumption types: %w", err)
	}
	defer rows.Close()

	var types []model.ConsumptionType
	for rows.Next() {
		var t model.ConsumptionType
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &description, &t.Limit, &t.Period,
			&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning consumption type: %w", err)
		}
		t.Description = description.String
		types = append(types, t)
	}
	return types, total, rows.Err()
}

// UpdateType updates a consumption type's fields.
func UpdateType(ctx context.Context, db *sql.DB, id int64, name, description string, limit int, period string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE consumption_types
		 SET name = ?, description = ?, per_period_limit = ?, period = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, description, limit, period, id,
	)
	if err != nil {
		return fmt.Errorf("updating consumption type: %w", err)
	}
	return nil
}

// TypeHasActiveItems reports whether any non-deleted items still reference
// the type. Deleting such a type would orphan their quota policy.
func TypeHasActiveItems(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM items WHERE type_id = ? AND deleted_at IS NULL)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking type items: %w", err)
	}
	return exists == 1, nil
}

// DeleteType soft-deletes a consumption type.
func DeleteType(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE consumption_types SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting consumption type: %w", err)
	}
	return nil
}
