package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/libreshelf/libreshelf/internal/model"
)

// NormalizeAdmissionNo uppercases and trims an admission number.
// Admission numbers compare case-insensitively everywhere.
func NormalizeAdmissionNo(admissionNo string) string {
	return strings.ToUpper(strings.TrimSpace(admissionNo))
}

// CreateStudent adds a student profile (librarian-entered, no portal
// credential).
func CreateStudent(ctx context.Context, db *sql.DB, admissionNo, name, batch string) (*model.Student, error) {
	admissionNo = NormalizeAdmissionNo(admissionNo)
	name = strings.TrimSpace(name)
	batch = strings.TrimSpace(batch)
	if admissionNo == "" || name == "" || batch == "" {
		return nil, fmt.Errorf("%w: admission number, name and batch required", model.ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO students (admission_no, name, batch) VALUES (?, ?, ?)`,
		admissionNo, name, batch,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("admission number %q: %w", admissionNo, model.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("creating student: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting student id: %w", err)
	}

	return GetStudent(ctx, db, id)
}

// GetStudent returns a student by internal ID.
func GetStudent(ctx context.Context, db *sql.DB, id int64) (*model.Student, error) {
	s := &model.Student{}
	err := db.QueryRowContext(ctx,
		`SELECT id, admission_no, name, batch, created_at FROM students WHERE id = ?`, id,
	).Scan(&s.ID, &s.AdmissionNo, &s.Name, &s.Batch, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting student: %w", err)
	}
	return s, nil
}

// FindStudentByAdmissionNo returns a student by admission number,
// case-insensitively.
func FindStudentByAdmissionNo(ctx context.Context, db *sql.DB, admissionNo string) (*model.Student, error) {
	s := &model.Student{}
	err := db.QueryRowContext(ctx,
		`SELECT id, admission_no, name, batch, created_at FROM students WHERE admission_no = ?`,
		NormalizeAdmissionNo(admissionNo),
	).Scan(&s.ID, &s.AdmissionNo, &s.Name, &s.Batch, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding student: %w", err)
	}
	return s, nil
}

// ListStudents returns a page of students, optionally filtered by a
// name/admission-number/batch substring.
func ListStudents(ctx context.Context, db *sql.DB, query string, page, perPage int) ([]model.Student, model.PageInfo, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	where := `WHERE 1=1`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		where += ` AND (name LIKE ? OR admission_no LIKE ? OR batch LIKE ?)`
		pattern := "%" + q + "%"
		args = append(args, pattern, strings.ToUpper(pattern), pattern)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students `+where, args...).Scan(&total); err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("counting students: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, admission_no, name, batch, created_at
		 FROM students `+where+` ORDER BY admission_no LIMIT ? OFFSET ?`,
		append(args, perPage, (page-1)*perPage)...,
	)
	if err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.AdmissionNo, &s.Name, &s.Batch, &s.CreatedAt); err != nil {
			return nil, model.PageInfo{}, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PageInfo{}, err
	}
	return students, model.NewPageInfo(page, perPage, total), nil
}

// UpdateStudent edits a student's admission number, name and batch.
// The portal credential row follows a changed admission number via the
// cascading foreign key.
func UpdateStudent(ctx context.Context, db *sql.DB, id int64, admissionNo, name, batch string) (*model.Student, error) {
	admissionNo = NormalizeAdmissionNo(admissionNo)
	name = strings.TrimSpace(name)
	batch = strings.TrimSpace(batch)
	if admissionNo == "" || name == "" || batch == "" {
		return nil, fmt.Errorf("%w: admission number, name and batch required", model.ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE students SET admission_no = ?, name = ?, batch = ? WHERE id = ?`,
		admissionNo, name, batch, id,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("admission number %q: %w", admissionNo, model.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("updating student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating student: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("student %d: %w", id, model.ErrNotFound)
	}

	return GetStudent(ctx, db, id)
}

// DeleteStudent removes a student profile and its portal credential.
// Blocked while the student holds any active loan. Historical loans
// keep their rows; the foreign key nulls their student reference.
func DeleteStudent(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("student %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking student: %w", err)
	}

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE student_id = ? AND return_date IS NULL`, id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("checking active loans: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("student %d: %w", id, model.ErrResourceBusy)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing student deletion: %w", err)
	}
	return nil
}
