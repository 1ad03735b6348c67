package model

import "time"

// Student represents a student profile. AdmissionNo is unique and
// compared case-insensitively (stored uppercased).
type Student struct {
	ID          int64     `json:"id"`
	AdmissionNo string    `json:"admission_no"`
	Name        string    `json:"name"`
	Batch       string    `json:"batch"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credential is a student's optional portal credential, keyed by
// admission number. A profile may exist without one.
type Credential struct {
	AdmissionNo  string    `json:"admission_no"`
	PasswordHash string    `json:"-"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is a pending portal registration joined with its profile.
type Registration struct {
	AdmissionNo string    `json:"admission_no"`
	Name        string    `json:"name"`
	Batch       string    `json:"batch"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
}

// Authentication outcomes for portal credentials. Pending means the
// password matched but the account awaits librarian approval.
const (
	AuthApproved = "approved"
	AuthPending  = "pending"
	AuthNotFound = "not_found"
	AuthInvalid  = "invalid"
)
