package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/libreshelf/libreshelf/internal/model"
)

const defaultLoanDays = 14

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// DefaultLoanDays returns the configured default loan period, falling
// back to 14 days when unset.
func DefaultLoanDays(ctx context.Context, db *sql.DB) (int, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'default_loan_days'`,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return defaultLoanDays, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying default_loan_days: %w", err)
	}

	days, err := strconv.Atoi(value)
	if err != nil || days < 1 {
		return defaultLoanDays, nil
	}
	return days, nil
}

// SetDefaultLoanDays updates the default loan period.
func SetDefaultLoanDays(ctx context.Context, db *sql.DB, days int) error {
	if days < 1 {
		return fmt.Errorf("%w: loan period must be at least one day", model.ErrInvalidInput)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('default_loan_days', ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(days),
	)
	if err != nil {
		return fmt.Errorf("storing default_loan_days: %w", err)
	}
	return nil
}
