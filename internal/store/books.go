package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/libreshelf/libreshelf/internal/model"
)

// NormalizeCustomID uppercases and trims a librarian-assigned book ID.
func NormalizeCustomID(customID string) string {
	return strings.ToUpper(strings.TrimSpace(customID))
}

// CreateBook adds a book to the catalog. The custom ID is optional;
// when present it must not collide with another book's.
func CreateBook(ctx context.Context, db *sql.DB, name, author, customID string) (*model.Book, error) {
	name = strings.TrimSpace(name)
	author = strings.TrimSpace(author)
	if name == "" || author == "" {
		return nil, fmt.Errorf("%w: name and author required", model.ErrInvalidInput)
	}

	var cid any
	if c := NormalizeCustomID(customID); c != "" {
		cid = c
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO books (custom_id, name, author, available) VALUES (?, ?, ?, 1)`,
		cid, name, author,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("custom id %q: %w", customID, model.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a book by internal ID.
func GetBook(ctx context.Context, db *sql.DB, id int64) (*model.Book, error) {
	b := &model.Book{}
	var customID, coverMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, custom_id, name, author, available, cover_mime, created_at, updated_at
		 FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &customID, &b.Name, &b.Author, &b.Available, &coverMime, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	b.CustomID = customID.String
	b.CoverMime = coverMime.String
	return b, nil
}

// FindBookByToken resolves the issue/return lookup box: the token may
// be either the internal numeric ID or a custom ID. When a numeric
// token matches both a book's ID and another book's custom ID, the ID
// match wins.
func FindBookByToken(ctx context.Context, db *sql.DB, token string) (*model.Book, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		book, err := GetBook(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if book != nil {
			return book, nil
		}
	}

	b := &model.Book{}
	var customID, coverMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, custom_id, name, author, available, cover_mime, created_at, updated_at
		 FROM books WHERE custom_id = ?`, NormalizeCustomID(token),
	).Scan(&b.ID, &customID, &b.Name, &b.Author, &b.Available, &coverMime, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding book by custom id: %w", err)
	}
	b.CustomID = customID.String
	b.CoverMime = coverMime.String
	return b, nil
}

// SearchBooks returns books whose name or author contains the query.
func SearchBooks(ctx context.Context, db *sql.DB, query string) ([]model.Book, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT id, custom_id, name, author, available, cover_mime, created_at, updated_at
		 FROM books WHERE name LIKE ? OR author LIKE ? ORDER BY name`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// ListBooks returns a page of books, optionally filtered by
// availability ("available" or "issued") and a name/author substring.
func ListBooks(ctx context.Context, db *sql.DB, filter, query string, page, perPage int) ([]model.Book, model.PageInfo, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	where := `WHERE 1=1`
	var args []any

	switch filter {
	case model.BookFilterAvailable:
		where += ` AND available = 1`
	case model.BookFilterIssued:
		where += ` AND available = 0`
	}
	if q := strings.TrimSpace(query); q != "" {
		where += ` AND (name LIKE ? OR author LIKE ?)`
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books `+where, args...).Scan(&total); err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("counting books: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, custom_id, name, author, available, cover_mime, created_at, updated_at
		 FROM books `+where+` ORDER BY name LIMIT ? OFFSET ?`,
		append(args, perPage, (page-1)*perPage)...,
	)
	if err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, model.PageInfo{}, err
	}
	return books, model.NewPageInfo(page, perPage, total), nil
}

func scanBooks(rows *sql.Rows) ([]model.Book, error) {
	var books []model.Book
	for rows.Next() {
		var b model.Book
		var customID, coverMime sql.NullString
		if err := rows.Scan(&b.ID, &customID, &b.Name, &b.Author, &b.Available, &coverMime, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.CustomID = customID.String
		b.CoverMime = coverMime.String
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook edits a book's name, author and custom ID.
func UpdateBook(ctx context.Context, db *sql.DB, id int64, name, author, customID string) (*model.Book, error) {
	name = strings.TrimSpace(name)
	author = strings.TrimSpace(author)
	if name == "" || author == "" {
		return nil, fmt.Errorf("%w: name and author required", model.ErrInvalidInput)
	}

	var cid any
	if c := NormalizeCustomID(customID); c != "" {
		cid = c
	}

	result, err := db.ExecContext(ctx,
		`UPDATE books SET custom_id = ?, name = ?, author = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		cid, name, author, id,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("custom id %q: %w", customID, model.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("updating book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating book: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("book %d: %w", id, model.ErrNotFound)
	}

	return GetBook(ctx, db, id)
}

// DeleteBook removes a book from the catalog. A book currently on loan
// cannot be deleted. Historical loans keep their rows; the foreign key
// nulls their book reference.
func DeleteBook(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var available bool
	err = tx.QueryRowContext(ctx, `SELECT available FROM books WHERE id = ?`, id).Scan(&available)
	if err == sql.ErrNoRows {
		return fmt.Errorf("book %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking book: %w", err)
	}
	if !available {
		return fmt.Errorf("book %d: %w", id, model.ErrResourceBusy)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing book deletion: %w", err)
	}
	return nil
}

// SetBookCover stores a book's cover image.
func SetBookCover(ctx context.Context, db *sql.DB, id int64, cover []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		cover, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// GetBookCover returns a book's cover image data and MIME type.
func GetBookCover(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}
