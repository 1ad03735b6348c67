package store

import (
	"strings"
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure (custom_id, admission_no, username, or the active-loan
// index).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
