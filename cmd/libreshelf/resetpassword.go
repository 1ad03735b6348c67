package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/libreshelf/libreshelf/internal/db"
	"github.com/libreshelf/libreshelf/internal/model"
	"github.com/libreshelf/libreshelf/internal/store"
)

func newResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Reset a librarian's password",
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

			librarian, err := store.GetLibrarianByUsername(cmd.Context(), database, args[0])
			if err != nil {
				return err
			}
			if librarian == nil {
				return fmt.Errorf("no librarian named %q", args[0])
			}

			password, err := promptNewPassword()
			if err != nil {
				return err
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}

			if err := store.UpdateLibrarianPassword(cmd.Context(), database, librarian.ID, string(hash)); err != nil {
				return err
			}

			fmt.Printf("Password updated for %q.\n", librarian.Username)
			return nil
		},
	}
}

func promptNewPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; cannot prompt for password")
	}

	fmt.Print("New password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if err := model.ValidatePassword(string(first)); err != nil {
		return "", err
	}
	return string(first), nil
}
