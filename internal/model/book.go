package model

import "time"

// Book represents a catalogued book. CustomID is an optional
// librarian-assigned identifier, stored uppercased.
type Book struct {
	ID        int64     `json:"id"`
	CustomID  string    `json:"custom_id,omitempty"`
	Name      string    `json:"name"`
	Author    string    `json:"author"`
	Available bool      `json:"available"`
	CoverMime string    `json:"cover_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book list filters.
const (
	BookFilterAvailable = "available"
	BookFilterIssued    = "issued"
)
