package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/libreshelf/libreshelf/internal/model"
)

// CreateLibrarian creates a staff account.
func CreateLibrarian(ctx context.Context, db *sql.DB, username, passwordHash string) (*model.Librarian, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", model.ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO librarians (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("username %q: %w", username, model.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("creating librarian: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting librarian id: %w", err)
	}

	return GetLibrarian(ctx, db, id)
}

// GetLibrarian returns a librarian by ID.
func GetLibrarian(ctx context.Context, db *sql.DB, id int64) (*model.Librarian, error) {
	l := &model.Librarian{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM librarians WHERE id = ?`, id,
	).Scan(&l.ID, &l.Username, &l.PasswordHash, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting librarian: %w", err)
	}
	return l, nil
}

// GetLibrarianByUsername returns a librarian by username.
func GetLibrarianByUsername(ctx context.Context, db *sql.DB, username string) (*model.Librarian, error) {
	l := &model.Librarian{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM librarians WHERE username = ?`, username,
	).Scan(&l.ID, &l.Username, &l.PasswordHash, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting librarian by username: %w", err)
	}
	return l, nil
}

// UpdateLibrarianPassword updates a librarian's password hash.
func UpdateLibrarianPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE librarians SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating librarian password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating librarian password: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("librarian %d: %w", id, model.ErrNotFound)
	}
	return nil
}
