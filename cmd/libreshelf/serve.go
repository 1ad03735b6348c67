package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/libreshelf/libreshelf/internal/api"
	"github.com/libreshelf/libreshelf/internal/db"
	"github.com/libreshelf/libreshelf/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cleanup, err := setupLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// First run against a fresh database bootstraps the schema and the
	// admin account before serving.
	firstRun := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		firstRun = true
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if firstRun {
		username, password, err := bootstrapAdmin(ctx, database, cfg.AdminUser)
		if err != nil {
			return err
		}
		printAdminCredentials(username, password)
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
