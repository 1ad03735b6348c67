package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/libreshelf/libreshelf/internal/model"
)

// ActiveLoans returns all open loans ordered by due date, soonest
// first.
func ActiveLoans(ctx context.Context, db *sql.DB) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		loanSelect+` WHERE l.return_date IS NULL ORDER BY l.due_date, l.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// OverdueLoans returns open loans whose due date has passed.
func OverdueLoans(ctx context.Context, db *sql.DB, today string) ([]model.Loan, error) {
	if today == "" {
		today = model.Today()
	}
	rows, err := db.QueryContext(ctx,
		loanSelect+` WHERE l.return_date IS NULL AND l.due_date < ? ORDER BY l.due_date, l.id`,
		today,
	)
	if err != nil {
		return nil, fmt.Errorf("listing overdue loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// LoanHistory returns the full ledger, newest first, optionally
// filtered by a text query over book and student fields and by status
// ("active" or "returned"). Rows referencing deleted books or students
// are included with their joined fields empty.
func LoanHistory(ctx context.Context, db *sql.DB, query, status string) ([]model.Loan, error) {
	where := ` WHERE 1=1`
	var args []any

	switch status {
	case model.LoanStatusActive:
		where += ` AND l.return_date IS NULL`
	case model.LoanStatusReturned:
		where += ` AND l.return_date IS NOT NULL`
	}
	if q := strings.TrimSpace(query); q != "" {
		where += ` AND (b.name LIKE ? OR b.author LIKE ? OR b.custom_id LIKE ?
		                OR s.name LIKE ? OR s.admission_no LIKE ?)`
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern, strings.ToUpper(pattern), pattern, strings.ToUpper(pattern))
	}

	rows, err := db.QueryContext(ctx, loanSelect+where+` ORDER BY l.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing loan history: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// TopBooks returns the most-loaned books with their loan counts.
// Deleted books are aggregated with a nil BookID and empty name.
func TopBooks(ctx context.Context, db *sql.DB, limit int) ([]model.BookCount, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx,
		`SELECT l.book_id, COALESCE(b.name, ''), COALESCE(b.author, ''), COUNT(*) AS n
		 FROM loans l
		 LEFT JOIN books b ON b.id = l.book_id
		 GROUP BY l.book_id
		 ORDER BY n DESC, b.name
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing top books: %w", err)
	}
	defer rows.Close()

	var counts []model.BookCount
	for rows.Next() {
		var c model.BookCount
		if err := rows.Scan(&c.BookID, &c.Name, &c.Author, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning book count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TopStudents returns the students with the most loans.
func TopStudents(ctx context.Context, db *sql.DB, limit int) ([]model.StudentCount, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx,
		`SELECT l.student_id, COALESCE(s.name, ''), COALESCE(s.admission_no, ''), COALESCE(s.batch, ''), COUNT(*) AS n
		 FROM loans l
		 LEFT JOIN students s ON s.id = l.student_id
		 GROUP BY l.student_id
		 ORDER BY n DESC, s.admission_no
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing top students: %w", err)
	}
	defer rows.Close()

	var counts []model.StudentCount
	for rows.Next() {
		var c model.StudentCount
		if err := rows.Scan(&c.StudentID, &c.Name, &c.AdmissionNo, &c.Batch, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning student count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// StudentLoans returns a student's own loans, newest first (portal
// view).
func StudentLoans(ctx context.Context, db *sql.DB, studentID int64) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		loanSelect+` WHERE l.student_id = ? ORDER BY l.id DESC`, studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing student loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// Stats returns the dashboard counters.
func Stats(ctx context.Context, db *sql.DB, today string) (*model.LibraryStats, error) {
	if today == "" {
		today = model.Today()
	}
	stats := &model.LibraryStats{}
	err := db.QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM books),
		    (SELECT COUNT(*) FROM books WHERE available = 1),
		    (SELECT COUNT(*) FROM students),
		    (SELECT COUNT(*) FROM loans WHERE return_date IS NULL),
		    (SELECT COUNT(*) FROM loans WHERE return_date IS NULL AND due_date < ?),
		    (SELECT COUNT(*) FROM students_auth WHERE is_approved = 0)`,
		today,
	).Scan(&stats.Books, &stats.AvailableBooks, &stats.Students,
		&stats.ActiveLoans, &stats.OverdueLoans, &stats.PendingRegistrations)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return stats, nil
}
