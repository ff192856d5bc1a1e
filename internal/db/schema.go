package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS departments (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_departments_name_active
    ON departments(name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('admin', 'employee')),
    department_id INTEGER REFERENCES departments(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS consumption_types (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    description      TEXT,
    per_period_limit INTEGER NOT NULL CHECK (per_period_limit > 0),
    period           TEXT NOT NULL CHECK (period IN ('weekly', 'monthly')),
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at       DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_consumption_types_name_active
    ON consumption_types(name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT,
    purchase_date DATETIME,
    photo         BLOB,
    photo_mime    TEXT,
    stock         INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    type_id       INTEGER NOT NULL REFERENCES consumption_types(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE TABLE IF NOT EXISTS consumption_records (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    item_id    INTEGER NOT NULL REFERENCES items(id),
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    photo      BLOB NOT NULL,
    photo_mime TEXT NOT NULL,
    notes      TEXT,
    taken_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_user_item_taken
    ON consumption_records(user_id, item_id, taken_at);

CREATE TABLE IF NOT EXISTS stock_adjustments (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    change     INTEGER NOT NULL CHECK (change != 0),
    reason     TEXT NOT NULL,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_adjustments_item
    ON stock_adjustments(item_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
