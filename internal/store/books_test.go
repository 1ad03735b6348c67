package store

import (
	"context"
	"errors"
	"testing"

	"github.com/libreshelf/libreshelf/internal/db"
	"github.com/libreshelf/libreshelf/internal/model"
)

func TestCreateBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "  Dune  ", "Frank Herbert", "sf-1")
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if book.Name != "Dune" {
		t.Errorf("name = %q, want trimmed %q", book.Name, "Dune")
	}
	if book.CustomID != "SF-1" {
		t.Errorf("custom id = %q, want uppercased %q", book.CustomID, "SF-1")
	}
	if !book.Available {
		t.Error("new book should be available")
	}
}

func TestCreateBookValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "", "Author", ""); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("empty name: got %v, want ErrInvalidInput", err)
	}
	if _, err := CreateBook(ctx, database, "Name", "  ", ""); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("blank author: got %v, want ErrInvalidInput", err)
	}
}

func TestCreateBookDuplicateCustomID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", "SF-1"); err != nil {
		t.Fatalf("creating book: %v", err)
	}

	// Case-insensitive collision.
	_, err := CreateBook(ctx, database, "Dune Messiah", "Frank Herbert", "sf-1")
	if !errors.Is(err, model.ErrDuplicateKey) {
		t.Errorf("duplicate custom id: got %v, want ErrDuplicateKey", err)
	}

	// Books without a custom ID never collide with each other.
	if _, err := CreateBook(ctx, database, "Children of Dune", "Frank Herbert", ""); err != nil {
		t.Errorf("creating second book without custom id: %v", err)
	}
	if _, err := CreateBook(ctx, database, "God Emperor of Dune", "Frank Herbert", ""); err != nil {
		t.Errorf("creating third book without custom id: %v", err)
	}
}

func TestListBooksFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "Dune", "Frank Herbert", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateBook(ctx, database, "Hyperion", "Dan Simmons", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}
	if _, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S1", Days: 7}); err != nil {
		t.Fatalf("issuing book: %v", err)
	}

	available, _, err := ListBooks(ctx, database, model.BookFilterAvailable, "", 1, 20)
	if err != nil {
		t.Fatalf("listing available: %v", err)
	}
	if len(available) != 1 || available[0].Name != "Hyperion" {
		t.Errorf("available filter = %+v, want just Hyperion", available)
	}

	issued, _, err := ListBooks(ctx, database, model.BookFilterIssued, "", 1, 20)
	if err != nil {
		t.Fatalf("listing issued: %v", err)
	}
	if len(issued) != 1 || issued[0].Name != "Dune" {
		t.Errorf("issued filter = %+v, want just Dune", issued)
	}

	all, page, err := ListBooks(ctx, database, "", "", 1, 20)
	if err != nil {
		t.Fatalf("listing all: %v", err)
	}
	if len(all) != 2 || page.Total != 2 {
		t.Errorf("unfiltered list = %d books, total %d, want 2/2", len(all), page.Total)
	}
}

func TestSearchBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBook(ctx, database, "The Left Hand of Darkness", "Ursula K. Le Guin", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateBook(ctx, database, "The Dispossessed", "Ursula K. Le Guin", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateBook(ctx, database, "Hyperion", "Dan Simmons", ""); err != nil {
		t.Fatalf("creating book: %v", err)
	}

	byAuthor, err := SearchBooks(ctx, database, "Le Guin")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(byAuthor) != 2 {
		t.Errorf("author search found %d books, want 2", len(byAuthor))
	}

	byTitle, err := SearchBooks(ctx, database, "Darkness")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(byTitle) != 1 {
		t.Errorf("title search found %d books, want 1", len(byTitle))
	}
}

func TestUpdateBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "Dune", "F. Herbert", "")
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}

	updated, err := UpdateBook(ctx, database, book.ID, "Dune", "Frank Herbert", "sf-1")
	if err != nil {
		t.Fatalf("updating book: %v", err)
	}
	if updated.Author != "Frank Herbert" || updated.CustomID != "SF-1" {
		t.Errorf("update result = %+v", updated)
	}

	if _, err := UpdateBook(ctx, database, 999, "X", "Y", ""); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("updating missing book: got %v, want ErrNotFound", err)
	}
}

func TestDeleteBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "Dune", "Frank Herbert", "")
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}
	if _, err := CreateStudent(ctx, database, "S1", "Arun Menon", "2023"); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	if _, err := IssueBook(ctx, database, IssueRequest{BookToken: "1", AdmissionNo: "S1", Days: 7}); err != nil {
		t.Fatalf("issuing book: %v", err)
	}

	// On loan: deletion refused.
	if err := DeleteBook(ctx, database, book.ID); !errors.Is(err, model.ErrResourceBusy) {
		t.Errorf("deleting issued book: got %v, want ErrResourceBusy", err)
	}

	if _, err := ReturnBook(ctx, database, "1", "S1", ""); err != nil {
		t.Fatalf("returning book: %v", err)
	}
	if err := DeleteBook(ctx, database, book.ID); err != nil {
		t.Fatalf("deleting book: %v", err)
	}

	// The ledger row survives with its book reference nulled and the
	// joined fields empty.
	history, err := LoanHistory(ctx, database, "", "")
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].BookID != nil {
		t.Errorf("book reference = %v, want nil after deletion", *history[0].BookID)
	}
	if history[0].BookName != "" {
		t.Errorf("book name = %q, want empty after deletion", history[0].BookName)
	}
	if history[0].StudentName != "Arun Menon" {
		t.Errorf("student name = %q, want preserved", history[0].StudentName)
	}

	if err := DeleteBook(ctx, database, book.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("deleting twice: got %v, want ErrNotFound", err)
	}
}

func TestBookCover(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := CreateBook(ctx, database, "Dune", "Frank Herbert", "")
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}

	cover, mime, err := GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("getting cover: %v", err)
	}
	if cover != nil || mime != "" {
		t.Errorf("fresh book has cover %d bytes, mime %q", len(cover), mime)
	}

	data := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := SetBookCover(ctx, database, book.ID, data, "image/jpeg"); err != nil {
		t.Fatalf("setting cover: %v", err)
	}

	cover, mime, err = GetBookCover(ctx, database, book.ID)
	if err != nil {
		t.Fatalf("getting cover: %v", err)
	}
	if len(cover) != len(data) || mime != "image/jpeg" {
		t.Errorf("cover = %d bytes, mime %q", len(cover), mime)
	}

	if err := SetBookCover(ctx, database, 999, data, "image/jpeg"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("setting cover on missing book: got %v, want ErrNotFound", err)
	}
}
