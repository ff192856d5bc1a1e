package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kantorid/persediaan/internal/model"
)

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db *sql.DB, name, email, passwordHash, role string, departmentID *int64) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, department_id)
		 VALUES (?, ?, ?, ?, ?)`,
		name, email, passwordHash, role, departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	var departmentName sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.email, u.password_hash, u.role, u.department_id,
		        u.created_at, u.deleted_at, d.name AS department_name
		 FROM users u
		 LEFT JOIN departments d ON d.id = u.department_id
		 WHERE u.id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.DepartmentID,
		&u.CreatedAt, &u.DeletedAt, &departmentName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.DepartmentName = departmentName.String
	return u, nil
}

// GetUserByEmail returns a user by email (including soft-deleted for auth checks).
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	var departmentName sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.email, u.password_hash, u.role, u.department_id,
		        u.created_at, u.deleted_at, d.name AS department_name
		 FROM users u
		 LEFT JOIN departments d ON d.id = u.department_id
		 WHERE u.email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.DepartmentID,
		&u.CreatedAt, &u.DeletedAt, &departmentName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	u.DepartmentName = departmentName.String
	return u, nil
}

// ListUsers returns non-deleted users matching the optional search term,
// newest first, with the total count for pagination.
func ListUsers(ctx context.Context, db *sql.DB, search string, limit, offset int) ([]model.User, int, error) {
	where := `WHERE u.deleted_at IS NULL`
	var args []any

	if search != "" {
		where += ` AND (u.name LIKE ? OR u.email LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users u `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.password_hash, u.role, u.department_id,
		        u.created_at, u.deleted_at, d.name AS department_name
		 FROM users u
		 LEFT JOIN departments d ON d.id = u.department_id `+where+
			` ORDER BY u.created_at DESC, u.id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var departmentName sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.DepartmentID,
			&u.CreatedAt, &u.DeletedAt, &departmentName); err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		u.DepartmentName = departmentName.String
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateUser updates a user's profile fields.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, name, email, role string, departmentID *int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, department_id = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, email, role, departmentID, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserPassword sets a new password hash for a user.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user. Callers must first check
// ledger.UserHasRecords to keep the consumption audit trail intact.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
