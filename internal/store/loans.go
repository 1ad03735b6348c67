package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/libreshelf/libreshelf/internal/model"
)

// IssueRequest describes a loan to create. The due date comes either
// from Days (issue date + N days) or from an explicit DueDate, which
// takes precedence. IssueDate defaults to today.
type IssueRequest struct {
	BookToken   string
	AdmissionNo string
	Days        int
	DueDate     string
	IssueDate   string
}

// IssueBook issues a book to a student. The availability check, the
// ledger insert and the availability flip happen in one transaction,
// so a concurrent issue of the same book loses cleanly: it either sees
// available = 0 or trips the active-loan unique index. Both surface as
// ErrConflict.
func IssueBook(ctx context.Context, db *sql.DB, req IssueRequest) (*model.Loan, error) {
	issueDate := req.IssueDate
	if issueDate == "" {
		issueDate = model.Today()
	}
	if _, err := model.ParseDate(issueDate); err != nil {
		return nil, err
	}

	dueDate := req.DueDate
	if dueDate == "" {
		if req.Days <= 0 {
			return nil, fmt.Errorf("%w: loan period or due date required", model.ErrInvalidInput)
		}
		var err error
		dueDate, err = model.AddDays(issueDate, req.Days)
		if err != nil {
			return nil, err
		}
	} else if _, err := model.ParseDate(dueDate); err != nil {
		return nil, err
	}
	if dueDate <= issueDate {
		return nil, fmt.Errorf("%w: due date %s is not after issue date %s", model.ErrInvalidInput, dueDate, issueDate)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	bookID, available, err := findBookTx(ctx, tx, req.BookToken)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("book %q: %w", req.BookToken, model.ErrConflict)
	}

	var studentID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM students WHERE admission_no = ?`, NormalizeAdmissionNo(req.AdmissionNo),
	).Scan(&studentID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("student %q: %w", req.AdmissionNo, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding student: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO loans (book_id, student_id, issue_date, due_date) VALUES (?, ?, ?, ?)`,
		bookID, studentID, issueDate, dueDate,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("book %q: %w", req.BookToken, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("recording loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET available = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, bookID,
	); err != nil {
		return nil, fmt.Errorf("updating availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing issue: %w", err)
	}

	loanID, _ := result.LastInsertId()
	return GetLoan(ctx, db, loanID)
}

// ReturnBook closes the active loan for a book/student pair and makes
// the book available again, in one transaction. The return date
// defaults to today.
func ReturnBook(ctx context.Context, db *sql.DB, bookToken, admissionNo, returnDate string) (*model.Loan, error) {
	if returnDate == "" {
		returnDate = model.Today()
	}
	if _, err := model.ParseDate(returnDate); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	bookID, _, err := findBookTx(ctx, tx, bookToken)
	if err != nil {
		return nil, err
	}

	var studentID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM students WHERE admission_no = ?`, NormalizeAdmissionNo(admissionNo),
	).Scan(&studentID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("student %q: %w", admissionNo, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding student: %w", err)
	}

	var loanID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM loans WHERE book_id = ? AND student_id = ? AND return_date IS NULL`,
		bookID, studentID,
	).Scan(&loanID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no active issue for this book and student: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding active loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE loans SET return_date = ? WHERE id = ?`, returnDate, loanID,
	); err != nil {
		return nil, fmt.Errorf("closing loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET available = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, bookID,
	); err != nil {
		return nil, fmt.Errorf("updating availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return GetLoan(ctx, db, loanID)
}

// ExtendLoan moves an active loan's due date forward. The new due date
// must be strictly after both the current due date and today.
func ExtendLoan(ctx context.Context, db *sql.DB, id int64, newDueDate, today string) (*model.Loan, error) {
	if _, err := model.ParseDate(newDueDate); err != nil {
		return nil, err
	}
	if today == "" {
		today = model.Today()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var dueDate string
	var returnDate sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT due_date, return_date FROM loans WHERE id = ?`, id,
	).Scan(&dueDate, &returnDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting loan: %w", err)
	}
	if returnDate.Valid {
		return nil, fmt.Errorf("loan %d already returned: %w", id, model.ErrNotFound)
	}

	if newDueDate <= dueDate {
		return nil, fmt.Errorf("%w: new due date %s is not after current due date %s", model.ErrInvalidInput, newDueDate, dueDate)
	}
	if newDueDate <= today {
		return nil, fmt.Errorf("%w: new due date %s is not in the future", model.ErrInvalidInput, newDueDate)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE loans SET due_date = ? WHERE id = ?`, newDueDate, id,
	); err != nil {
		return nil, fmt.Errorf("extending loan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing extension: %w", err)
	}

	return GetLoan(ctx, db, id)
}

// GetLoan returns a loan by ID with book and student details joined.
// Deleted books and students leave the joined fields empty.
func GetLoan(ctx context.Context, db *sql.DB, id int64) (*model.Loan, error) {
	row := db.QueryRowContext(ctx, loanSelect+` WHERE l.id = ?`, id)

	loan, err := scanLoanRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting loan: %w", err)
	}
	return loan, nil
}

// findBookTx resolves a book token inside a transaction, returning the
// book's ID and availability. Numeric ID match wins over custom ID.
func findBookTx(ctx context.Context, tx *sql.Tx, token string) (int64, bool, error) {
	var bookID int64
	var available bool

	if id, perr := strconv.ParseInt(token, 10, 64); perr == nil {
		err := tx.QueryRowContext(ctx,
			`SELECT id, available FROM books WHERE id = ?`, id,
		).Scan(&bookID, &available)
		if err == nil {
			return bookID, available, nil
		}
		if err != sql.ErrNoRows {
			return 0, false, fmt.Errorf("finding book: %w", err)
		}
	}

	err := tx.QueryRowContext(ctx,
		`SELECT id, available FROM books WHERE custom_id = ?`, NormalizeCustomID(token),
	).Scan(&bookID, &available)
	if err == sql.ErrNoRows {
		return 0, false, fmt.Errorf("book %q: %w", token, model.ErrNotFound)
	}
	if err != nil {
		return 0, false, fmt.Errorf("finding book: %w", err)
	}
	return bookID, available, nil
}

const loanSelect = `
	SELECT l.id, l.book_id, l.student_id, l.issue_date, l.due_date, l.return_date,
	       COALESCE(b.name, ''), COALESCE(b.author, ''), COALESCE(b.custom_id, ''),
	       COALESCE(s.name, ''), COALESCE(s.admission_no, ''), COALESCE(s.batch, '')
	 FROM loans l
	 LEFT JOIN books b ON b.id = l.book_id
	 LEFT JOIN students s ON s.id = l.student_id`

// scanLoanRow scans one row produced by loanSelect.
func scanLoanRow(scan func(...any) error) (*model.Loan, error) {
	l := &model.Loan{}
	var returnDate sql.NullString
	err := scan(&l.ID, &l.BookID, &l.StudentID, &l.IssueDate, &l.DueDate, &returnDate,
		&l.BookName, &l.BookAuthor, &l.CustomID,
		&l.StudentName, &l.AdmissionNo, &l.Batch)
	if err != nil {
		return nil, err
	}
	l.ReturnDate = returnDate.String
	return l, nil
}

func scanLoans(rows *sql.Rows) ([]model.Loan, error) {
	var loans []model.Loan
	for rows.Next() {
		l, err := scanLoanRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}
