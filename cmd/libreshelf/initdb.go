package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/libreshelf/libreshelf/internal/db"
	"github.com/libreshelf/libreshelf/internal/store"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			username, password, err := bootstrapAdmin(cmd.Context(), database, cfg.AdminUser)
			if err != nil {
				return err
			}
			if password == "" {
				fmt.Printf("Database ready, admin account %q already exists.\n", username)
				return nil
			}
			printAdminCredentials(username, password)
			return nil
		},
	}
}

// bootstrapAdmin ensures the admin librarian exists. Returns the
// generated password on creation, or an empty password when the account
// was already present.
func bootstrapAdmin(ctx context.Context, database *sql.DB, username string) (string, string, error) {
	existing, err := store.GetLibrarianByUsername(ctx, database, username)
	if err != nil {
		return "", "", err
	}
	if existing != nil {
		return username, "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hashing admin password: %w", err)
	}

	if _, err := store.CreateLibrarian(ctx, database, username, string(hash)); err != nil {
		return "", "", err
	}

	return username, password, nil
}

func printAdminCredentials(username, password string) {
	fmt.Println("Database initialized.")
	fmt.Printf("Admin username: %s\n", username)
	fmt.Printf("Admin password: %s\n", password)
	fmt.Println("Store this password now, it will not be shown again.")
}

// generatePassword returns a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}

	return string(password), nil
}
