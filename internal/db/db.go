package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database connection and configures pragmas.
// Pragmas go in the DSN so every pooled connection gets them; write
// transactions start in IMMEDIATE mode so that two concurrent issue
// attempts on the same book serialize instead of both reading a stale
// availability flag.
func Open(path string) (*sql.DB, error) {
	pragmas := "_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"

	memory := strings.Contains(path, ":memory:")
	var dsn string
	if memory {
		dsn = "file::memory:?" + pragmas
	} else {
		dsn = "file:" + path + "?_txlock=immediate&" + pragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if memory {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	return db, nil
}
