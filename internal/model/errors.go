package model

import "errors"

// Expected, recoverable outcomes of catalog, roster and loan
// operations. Callers match them with errors.Is; anything else is a
// storage failure.
var (
	// ErrNotFound means a referenced book, student or loan is absent.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means a unique constraint on custom_id or
	// admission_no was violated.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict means the book is already on loan.
	ErrConflict = errors.New("book already on loan")

	// ErrResourceBusy means a delete is blocked by an active loan.
	ErrResourceBusy = errors.New("blocked by active loan")

	// ErrInvalidInput means a malformed or logically invalid field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists means a duplicate portal registration.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAuthFailure means bad credentials or an unapproved account.
	ErrAuthFailure = errors.New("authentication failed")
)
