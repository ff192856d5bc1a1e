package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kantorid/persediaan/internal/model"
)

// CreateDepartment creates a new department.
func CreateDepartment(ctx context.Context, db *sql.DB, name string) (*model.Department, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO departments (name) VALUES (?)`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating department: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting department id: %w", err)
	}

	return GetDepartment(ctx, db, id)
}

// GetDepartment returns a department by ID.
func GetDepartment(ctx context.Context, db *sql.DB, id int64) (*model.Department, error) {
	d := &model.Department{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM departments WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return d, nil
}

// ListDepartments returns all non-deleted departments ordered by name.
func ListDepartments(ctx context.Context, db *sql.DB) ([]model.Department, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM departments
		 WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// UpdateDepartment renames a department.
func UpdateDepartment(ctx context.Context, db *sql.DB, id int64, name string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE departments SET name = ? WHERE id = ? AND deleted_at IS NULL`,
		name, id,
	)
	if err != nil {
		return fmt.Errorf("updating department: %w", err)
	}
	return nil
}

// DeleteDepartment soft-deletes a department. Users keep their reference so
// existing reports stay resolvable.
func DeleteDepartment(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE departments SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting department: %w", err)
	}
	return nil
}
