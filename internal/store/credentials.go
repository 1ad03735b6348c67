package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/libreshelf/libreshelf/internal/model"
)

// RegisterStudent creates a student profile together with an
// unapproved portal credential (self-service sign-up). Fails if a
// profile with the admission number already exists, approved or not.
func RegisterStudent(ctx context.Context, db *sql.DB, admissionNo, name, batch, password string) (*model.Student, error) {
	admissionNo = NormalizeAdmissionNo(admissionNo)
	name = strings.TrimSpace(name)
	batch = strings.TrimSpace(batch)
	if admissionNo == "" || name == "" || batch == "" {
		return nil, fmt.Errorf("%w: admission number, name and batch required", model.ErrInvalidInput)
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM students WHERE admission_no = ?`, admissionNo,
	).Scan(&exists)
	if err == nil {
		return nil, fmt.Errorf("admission number %q: %w", admissionNo, model.ErrAlreadyExists)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking student: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO students (admission_no, name, batch) VALUES (?, ?, ?)`,
		admissionNo, name, batch,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("admission number %q: %w", admissionNo, model.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("creating student: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting student id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO students_auth (admission_no, password_hash, is_approved) VALUES (?, ?, 0)`,
		admissionNo, string(hash),
	)
	if err != nil {
		return nil, fmt.Errorf("creating credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}

	return GetStudent(ctx, db, id)
}

// GetCredential returns a student's portal credential, or nil if the
// student has none.
func GetCredential(ctx context.Context, db *sql.DB, admissionNo string) (*model.Credential, error) {
	c := &model.Credential{}
	err := db.QueryRowContext(ctx,
		`SELECT admission_no, password_hash, is_approved, created_at
		 FROM students_auth WHERE admission_no = ?`,
		NormalizeAdmissionNo(admissionNo),
	).Scan(&c.AdmissionNo, &c.PasswordHash, &c.IsApproved, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential: %w", err)
	}
	return c, nil
}

// ListPendingRegistrations returns unapproved portal registrations
// joined with their profiles, oldest first.
func ListPendingRegistrations(ctx context.Context, db *sql.DB) ([]model.Registration, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.admission_no, s.name, s.batch, a.is_approved, a.created_at
		 FROM students_auth a
		 JOIN students s ON s.admission_no = a.admission_no
		 WHERE a.is_approved = 0
		 ORDER BY a.created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var r model.Registration
		if err := rows.Scan(&r.AdmissionNo, &r.Name, &r.Batch, &r.IsApproved, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

// ApproveStudent marks a portal credential as approved.
func ApproveStudent(ctx context.Context, db *sql.DB, admissionNo string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE students_auth SET is_approved = 1 WHERE admission_no = ?`,
		NormalizeAdmissionNo(admissionNo),
	)
	if err != nil {
		return fmt.Errorf("approving credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("approving credential: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("registration %q: %w", admissionNo, model.ErrNotFound)
	}
	return nil
}

// RejectStudent deletes an unapproved registration entirely: the
// student profile and its credential. Approved accounts cannot be
// rejected, and the guard against active loans still applies.
func RejectStudent(ctx context.Context, db *sql.DB, admissionNo string) error {
	admissionNo = NormalizeAdmissionNo(admissionNo)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var approved bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_approved FROM students_auth WHERE admission_no = ?`, admissionNo,
	).Scan(&approved)
	if err == sql.ErrNoRows {
		return fmt.Errorf("registration %q: %w", admissionNo, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking credential: %w", err)
	}
	if approved {
		return fmt.Errorf("%w: registration %q already approved", model.ErrInvalidInput, admissionNo)
	}

	var studentID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM students WHERE admission_no = ?`, admissionNo,
	).Scan(&studentID)
	if err != nil {
		return fmt.Errorf("finding student: %w", err)
	}

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE student_id = ? AND return_date IS NULL`, studentID,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("checking active loans: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("student %q: %w", admissionNo, model.ErrResourceBusy)
	}

	// Deleting the profile cascades to the credential row.
	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, studentID); err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rejection: %w", err)
	}
	return nil
}

// AuthenticateStudent checks a portal login. A correct password on an
// unapproved account yields AuthPending, distinct from AuthInvalid
// (wrong password) and AuthNotFound (no profile or no credential).
func AuthenticateStudent(ctx context.Context, db *sql.DB, admissionNo, password string) (string, *model.Student, error) {
	cred, err := GetCredential(ctx, db, admissionNo)
	if err != nil {
		return "", nil, err
	}
	if cred == nil {
		return model.AuthNotFound, nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return model.AuthInvalid, nil, nil
	}
	if !cred.IsApproved {
		return model.AuthPending, nil, nil
	}

	student, err := FindStudentByAdmissionNo(ctx, db, admissionNo)
	if err != nil {
		return "", nil, err
	}
	return model.AuthApproved, student, nil
}

// ChangeStudentPassword updates a credential after verifying the
// current password.
func ChangeStudentPassword(ctx context.Context, db *sql.DB, admissionNo, current, newPassword string) error {
	cred, err := GetCredential(ctx, db, admissionNo)
	if err != nil {
		return err
	}
	if cred == nil {
		return fmt.Errorf("credential %q: %w", admissionNo, model.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", model.ErrAuthFailure)
	}

	return ResetStudentPassword(ctx, db, admissionNo, newPassword)
}

// ResetStudentPassword force-sets a credential's password without a
// current-password check (librarian action).
func ResetStudentPassword(ctx context.Context, db *sql.DB, admissionNo, newPassword string) error {
	if err := model.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE students_auth SET password_hash = ? WHERE admission_no = ?`,
		string(hash), NormalizeAdmissionNo(admissionNo),
	)
	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("credential %q: %w", admissionNo, model.ErrNotFound)
	}
	return nil
}
