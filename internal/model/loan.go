package model

// Loan links a book and a student over an issue/due/return date range.
// A nil BookID or StudentID means the referenced row was deleted after
// the loan ended; the history row itself is never removed. An empty
// ReturnDate means the loan is active.
type Loan struct {
	ID         int64  `json:"id"`
	BookID     *int64 `json:"book_id"`
	StudentID  *int64 `json:"student_id"`
	IssueDate  string `json:"issue_date"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date,omitempty"`

	// Joined fields (not always populated). Empty when the referenced
	// book or student has been deleted.
	BookName    string `json:"book_name,omitempty"`
	BookAuthor  string `json:"book_author,omitempty"`
	CustomID    string `json:"custom_id,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	AdmissionNo string `json:"admission_no,omitempty"`
	Batch       string `json:"batch,omitempty"`
}

// Active reports whether the loan has not been returned yet.
func (l *Loan) Active() bool {
	return l.ReturnDate == ""
}

// Overdue reports whether the loan is active and past its due date.
func (l *Loan) Overdue(today string) bool {
	return l.Active() && l.DueDate < today
}

// Loan history status filters.
const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
)

// BookCount is a per-book loan count for leaderboard views.
type BookCount struct {
	BookID *int64 `json:"book_id"`
	Name   string `json:"name,omitempty"`
	Author string `json:"author,omitempty"`
	Count  int    `json:"count"`
}

// StudentCount is a per-student loan count for leaderboard views.
type StudentCount struct {
	StudentID   *int64 `json:"student_id"`
	Name        string `json:"name,omitempty"`
	AdmissionNo string `json:"admission_no,omitempty"`
	Batch       string `json:"batch,omitempty"`
	Count       int    `json:"count"`
}
