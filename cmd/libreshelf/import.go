package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/libreshelf/libreshelf/internal/db"
	"github.com/libreshelf/libreshelf/internal/importer"
)

func newImportBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-books <file.csv>",
		Short: "Bulk-import books from a CSV file (name, author, custom_id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			result, err := importer.ImportBooks(cmd.Context(), database, f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d books, skipped %d rows.\n", result.Added, result.Skipped)
			return nil
		},
	}
}

func newImportStudentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-students <file.csv>",
		Short: "Bulk-import students from a CSV file (admission_no, name, batch)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			result, err := importer.ImportStudents(cmd.Context(), database, f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d students, skipped %d rows.\n", result.Added, result.Skipped)
			return nil
		},
	}
}
