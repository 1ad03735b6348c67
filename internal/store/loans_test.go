package store

import (
	"context"
	"errors"
	"testing"

	"github.com/libreshelf/libreshelf/internal/db"
	"github.com/libreshelf/libreshelf/internal/model"
)

func TestIssueAndReturnBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "The Go Programming Language", "Donovan & Kernighan", "GO-001")
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "adm-42", "Priya Nair", "2024"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	loan, err := IssueBook(ctx, database, IssueRequest{
		BookToken:   "GO-001",
		AdmissionNo: "ADM-42",
		IssueDate:   "2024-01-01",
		Days:        14,
	})
	if err != nil {
		t.Fatalf("issuing book: %v", err)
	}
	if loan.DueDate != "2024-01-15" {
		t.Errorf("due date = %q, want 2024-01-15", loan.DueDate)
	}
	if !loan.Active() {
		t.Error("fresh loan should be active")
	}
	if loan.BookName != "The Go Programming Language" || loan.AdmissionNo != "ADM-42" {
		t.Errorf("joined fields not populated: %+v", loan)
	}

	got, err := GetBook(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("getting book: %v", err)
	}
	if got.Available {
		t.Error("issued book should not be available")
	}

	returned, err := ReturnBook(ctx, database, "GO-001", "adm-42", "2024-01-10")
	if err != nil {
		t.Fatalf("returning book: %v", err)
	}
	if returned.ReturnDate != "2024-01-10" {
		t.Errorf("return date = %q, want 2024-01-10", returned.ReturnDate)
	}
	if returned.Active() {
		t.Error("returned loan should not be active")
	}

	got, err = GetBook(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("getting book: %v", err)
	}
	if !got.Available {
		t.Error("returned book should be available again")
	}
}

func TestIssueBookUnavailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S2", "Meera Pillai", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	if _, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S1", Days: 7}); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	_, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S2", Days: 7})
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("second issue of the same book: got %v, want ErrConflict", err)
	}
}

func TestIssueBookValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", "SF-1"); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	tests := []struct {
		name string
		req  IssueRequest
		want error
	}{
		{
			name: "due date not after issue date",
			req:  IssueRequest{BookToken: "SF-1", AdmissionNo: "S1", IssueDate: "2024-01-10", DueDate: "2024-01-10"},
			want: model.ErrInvalidInput,
		},
		{
			name: "due date before issue date",
			req:  IssueRequest{BookToken: "SF-1", AdmissionNo: "S1", IssueDate: "2024-01-10", DueDate: "2024-01-05"},
			want: model.ErrInvalidInput,
		},
		{
			name: "no period and no due date",
			req:  IssueRequest{BookToken: "SF-1", AdmissionNo: "S1"},
			want: model.ErrInvalidInput,
		},
		{
			name: "malformed due date",
			req:  IssueRequest{BookToken: "SF-1", AdmissionNo: "S1", DueDate: "15/01/2024"},
			want: model.ErrInvalidInput,
		},
		{
			name: "unknown book",
			req:  IssueRequest{BookToken: "NOPE", AdmissionNo: "S1", Days: 7},
			want: model.ErrNotFound,
		},
		{
			name: "unknown student",
			req:  IssueRequest{BookToken: "SF-1", AdmissionNo: "GHOST", Days: 7},
			want: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IssueBook(ctx, database, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	// None of the failed attempts should have flipped availability.
	book, err := FindBookByToken(ctx, database, "SF-1")
	if err != nil {
		t.Fatalf("finding book: %v", err)
	}
	if !book.Available {
		t.Error("book should still be available after failed issue attempts")
	}
}

func TestReturnBookNoActiveLoan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S2", "Meera Pillai", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	// Never issued at all.
	_, err := ReturnBook(ctx, database, "1", "S1", "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("returning book never issued: got %v, want ErrNotFound", err)
	}

	// Issued, but to a different student.
	if _, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S1", Days: 7}); err != nil {
		t.Fatalf("issuing book: %v", err)
	}
	_, err = ReturnBook(ctx, database, "1", "S2", "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("returning for wrong student: got %v, want ErrNotFound", err)
	}

	// Already returned.
	if _, err := ReturnBook(ctx, database, "1", "S1", ""); err != nil {
		t.Fatalf("returning book: %v", err)
	}
	_, err = ReturnBook(ctx, database, "1", "S1", "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("double return: got %v, want ErrNotFound", err)
	}
}

func TestReissueAfterReturn(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S2", "Meera Pillai", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	if _, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S1", Days: 7}); err != nil {
		t.Fatalf("issuing book: %v", err)
	}
	if _, err := ReturnBook(ctx, database, "1", "S1", ""); err != nil {
		t.Fatalf("returning book: %v", err)
	}
	if _, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S2", Days: 7}); err != nil {
		t.Errorf("reissuing returned book: %v", err)
	}

	history, err := LoanHistory(ctx, database, "", "")
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestExtendLoan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	loan, err := IssueBook(ctx, database, IssueRequest{
		BookToken: "1", AdmissionNo: "S1", IssueDate: "2024-01-01", DueDate: "2024-01-15",
	})
	if err != nil {
		t.Fatalf("issuing book: %v", err)
	}

	// Not after the current due date.
	_, err = ExtendLoan(ctx, database, loan.ID, "2024-01-15", "2024-01-10")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("extend to same due date: got %v, want ErrInvalidInput", err)
	}
	_, err = ExtendLoan(ctx, database, loan.ID, "2024-01-10", "2024-01-10")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("extend backwards: got %v, want ErrInvalidInput", err)
	}

	extended, err := ExtendLoan(ctx, database, loan.ID, "2024-01-22", "2024-01-10")
	if err != nil {
		t.Fatalf("extending loan: %v", err)
	}
	if extended.DueDate != "2024-01-22" {
		t.Errorf("due date = %q, want 2024-01-22", extended.DueDate)
	}

	// A returned loan cannot be extended.
	if _, err := ReturnBook(ctx, database, "1", "S1", "2024-01-20"); err != nil {
		t.Fatalf("returning book: %v", err)
	}
	_, err = ExtendLoan(ctx, database, loan.ID, "2024-02-01", "2024-01-21")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("extending returned loan: got %v, want ErrNotFound", err)
	}
}

func TestExtendLoanMissing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := ExtendLoan(ctx, database, 99, "2030-01-01", "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("extending missing loan: got %v, want ErrNotFound", err)
	}
}

func TestLoanTokenResolution(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First book gets internal ID 1; second book claims "1" as its
	// custom ID. The numeric match on the internal ID must win.
	first, err := CreateBook(ctx, database, "First", "Author A", "")
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateBook(ctx, database, "Second", "Author B", "1"); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	loan, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S1", Days: 7})
	if err != nil {
		t.Fatalf("issuing book: %v", err)
	}
	if loan.BookID == nil || *loan.BookID != first.ID {
		t.Errorf("token %q resolved to book %v, want internal ID %d", "1", loan.BookID, first.ID)
	}

	// Custom IDs resolve case-insensitively.
	if _, err := CreateBook(ctx, database, "Third", "Author C", "sf-9"); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	book, err := FindBookByToken(ctx, database, "SF-9")
	if err != nil {
		t.Fatalf("finding book: %v", err)
	}
	if book == nil || book.Name != "Third" {
		t.Errorf("custom id lookup failed: %+v", book)
	}
}
