package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: index active due dates so the overdue view doesn't
	// scan the whole ledger.
	`CREATE INDEX IF NOT EXISTS idx_loans_due_date
	     ON loans(due_date) WHERE return_date IS NULL`,
}

// Migrate creates the schema and runs the database migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
