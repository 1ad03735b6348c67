package model

import (
	"fmt"
	"time"
)

// Actor roles carried in session tokens.
const (
	RoleLibrarian = "librarian"
	RoleStudent   = "student"
)

// Librarian is a staff account that can manage the catalog, roster and
// loans. Separate from student portal credentials.
type Librarian struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	return nil
}
