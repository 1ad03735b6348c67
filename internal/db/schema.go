package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// The partial unique index on loans(book_id) backs the availability
// invariant at the storage level: at most one loan per book may have
// return_date IS NULL. Deleting a book or student nulls the reference
// on historical loans instead of cascading, so the ledger survives as
// an audit trail.
const schema = `
CREATE TABLE IF NOT EXISTS librarians (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS books (
    id         INTEGER PRIMARY KEY,
    custom_id  TEXT UNIQUE,
    name       TEXT NOT NULL,
    author     TEXT NOT NULL,
    available  INTEGER NOT NULL DEFAULT 1,
    cover      BLOB,
    cover_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS students (
    id           INTEGER PRIMARY KEY,
    admission_no TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    batch        TEXT NOT NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS students_auth (
    admission_no  TEXT PRIMARY KEY
                  REFERENCES students(admission_no)
                  ON DELETE CASCADE ON UPDATE CASCADE,
    password_hash TEXT NOT NULL,
    is_approved   INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS loans (
    id          INTEGER PRIMARY KEY,
    book_id     INTEGER REFERENCES books(id) ON DELETE SET NULL,
    student_id  INTEGER REFERENCES students(id) ON DELETE SET NULL,
    issue_date  TEXT NOT NULL,
    due_date    TEXT NOT NULL,
    return_date TEXT,
    CHECK (due_date > issue_date)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_active_book
    ON loans(book_id) WHERE return_date IS NULL;

CREATE INDEX IF NOT EXISTS idx_loans_student ON loans(student_id);

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
