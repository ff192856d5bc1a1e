package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kantorid/persediaan/internal/model"
)

const itemColumns = `i.id, i.name, i.description, i.purchase_date, i.photo_mime, i.stock, i.type_id,
	        i.created_at, i.updated_at, i.deleted_at,
	        t.name AS type_name, t.per_period_limit, t.period`

// CreateItem creates a new item with zero stock. Initial stock is applied
// separately through the adjustment ledger so the audit trail stays complete.
func CreateItem(ctx context.Context, db *sql.DB, name, description string, purchaseDate *time.Time, typeID int64) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, purchase_date, type_id) VALUES (?, ?, ?, ?)`,
		name, description, purchaseDate, typeID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var description, photoMime sql.NullString
	err := row.Scan(&item.ID, &item.Name, &description, &item.PurchaseDate, &photoMime,
		&item.Stock, &item.TypeID, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
		&item.TypeName, &item.TypeLimit, &item.TypePeriod)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.PhotoMime = photoMime.String
	return item, nil
}

// GetItem returns an item by ID with its type's quota policy joined.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i
		 JOIN consumption_types t ON t.id = i.type_id
		 WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns non-deleted items matching the optional search term and
// type filter, newest first, with the total count for pagination.
func ListItems(ctx context.Context, db *sql.DB, search string, typeID int64, limit, offset int) ([]model.Item, int, error) {
	where := `WHERE i.deleted_at IS NULL`
	var args []any

	if search != "" {
		where += ` AND (i.name LIKE ? OR i.description LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if typeID > 0 {
		where += ` AND i.type_id = ?`
		args = append(args, typeID)
	}

	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items i `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i
		 JOIN consumption_types t ON t.id = i.type_id `+where+
			` ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// UpdateItem updates an item's metadata. Stock is deliberately not touched
// here; stock edits go through the adjustment ledger.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, name, description string, purchaseDate *time.Time, typeID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, purchase_date = ?, type_id = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, description, purchaseDate, typeID, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item. Records and adjustments keep their
// references for the audit trail.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemPhoto sets an item's photo data.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}
