package model

// LibraryStats holds the dashboard counters.
type LibraryStats struct {
	Books                int `json:"books"`
	AvailableBooks       int `json:"available_books"`
	Students             int `json:"students"`
	ActiveLoans          int `json:"active_loans"`
	OverdueLoans         int `json:"overdue_loans"`
	PendingRegistrations int `json:"pending_registrations"`
}
