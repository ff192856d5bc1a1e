package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kantorid/persediaan/internal/model"
)

const recordColumns = `r.id, r.user_id, r.item_id, r.quantity, r.photo_mime, r.notes, r.taken_at,
	        u.name AS user_name, i.name AS item_name, t.name AS type_name, t.period`

// RecordFilter narrows ListRecords. Zero values mean "no filter".
type RecordFilter struct {
	UserID int64
	ItemID int64
	Search string
	From   time.Time
	To     time.Time
}

func scanRecord(row interface{ Scan(...any) error }) (*model.Record, error) {
	r := &model.Record{}
	var notes sql.NullString
	err := row.Scan(&r.ID, &r.UserID, &r.ItemID, &r.Quantity, &r.PhotoMime, &notes, &r.TakenAt,
		&r.UserName, &r.ItemName, &r.TypeName, &r.TypePeriod)
	if err != nil {
		return nil, err
	}
	r.Notes = notes.String
	return r, nil
}

// GetRecord returns a consumption record by ID with user, item, and type
// names resolved for display.
func GetRecord(ctx context.Context, db *sql.DB, id int64) (*model.Record, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+recordColumns+`
		 FROM consumption_records r
		 JOIN users u ON u.id = r.user_id
		 JOIN items i ON i.id = r.item_id
		 JOIN consumption_types t ON t.id = i.type_id
		 WHERE r.id = ?`, id,
	)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return r, nil
}

// ListRecords returns consumption records matching the filter, newest first,
// with the total count for pagination.
func ListRecords(ctx context.Context, db *sql.DB, filter RecordFilter, limit, offset int) ([]model.Record, int, error) {
	where := `WHERE 1=1`
	var args []any

	if filter.UserID > 0 {
		where += ` AND r.user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.ItemID > 0 {
		where += ` AND r.item_id = ?`
		args = append(args, filter.ItemID)
	}
	if filter.Search != "" {
		where += ` AND (i.name LIKE ? OR u.name LIKE ? OR r.notes LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if !filter.From.IsZero() {
		where += ` AND r.taken_at >= ?`
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		where += ` AND r.taken_at <= ?`
		args = append(args, filter.To.UTC())
	}

	joins := ` FROM consumption_records r
	          JOIN users u ON u.id = r.user_id
	          JOIN items i ON i.id = r.item_id
	          JOIN consumption_types t ON t.id = i.type_id `

	var total int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+joins+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting records: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+recordColumns+joins+where+
			` ORDER BY r.taken_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *r)
	}
	return records, total, rows.Err()
}

// GetRecordPhoto returns a record's proof photo data and MIME type.
func GetRecordPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM consumption_records WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting record photo: %w", err)
	}
	return photo, mime, nil
}
