// Package importer loads books and students in bulk from CSV files,
// reusing the same store operations as the interactive paths so every
// row goes through the usual validation and uniqueness checks.
package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/libreshelf/libreshelf/internal/model"
	"github.com/libreshelf/libreshelf/internal/store"
)

// Result summarizes a bulk import run.
type Result struct {
	Added   int
	Skipped int
}

// ImportBooks reads book rows from CSV. Expected columns:
// name, author, custom_id (custom_id optional). A header row is
// detected and skipped. Rows with missing fields or duplicate custom
// IDs are skipped, not fatal.
func ImportBooks(ctx context.Context, db *sql.DB, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	result := &Result{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading csv: %w", err)
		}

		if first {
			first = false
			if isHeader(record, "name") {
				continue
			}
		}

		if len(record) < 2 {
			result.Skipped++
			continue
		}
		name := strings.TrimSpace(record[0])
		author := strings.TrimSpace(record[1])
		customID := ""
		if len(record) > 2 {
			customID = record[2]
		}

		if _, err := store.CreateBook(ctx, db, name, author, customID); err != nil {
			if errors.Is(err, model.ErrDuplicateKey) || errors.Is(err, model.ErrInvalidInput) {
				slog.Warn("skipping book row", "name", name, "error", err)
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Added++
	}

	return result, nil
}

// ImportStudents reads student rows from CSV. Expected columns:
// admission_no, name, batch. A header row is detected and skipped.
// Rows with missing fields or duplicate admission numbers are skipped.
func ImportStudents(ctx context.Context, db *sql.DB, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	result := &Result{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading csv: %w", err)
		}

		if first {
			first = false
			if isHeader(record, "admission_no") {
				continue
			}
		}

		if len(record) < 3 {
			result.Skipped++
			continue
		}

		_, err = store.CreateStudent(ctx, db, record[0], record[1], record[2])
		if err != nil {
			if errors.Is(err, model.ErrDuplicateKey) || errors.Is(err, model.ErrInvalidInput) {
				slog.Warn("skipping student row", "admission_no", record[0], "error", err)
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Added++
	}

	return result, nil
}

func isHeader(record []string, firstColumn string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), firstColumn)
}
