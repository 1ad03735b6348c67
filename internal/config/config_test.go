package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.DBPath != "libreshelf.sqlite3" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.AdminUser != "admin" {
		t.Errorf("admin user = %q", cfg.AdminUser)
	}
	if cfg.DefaultLoanDays != 14 {
		t.Errorf("default loan days = %d", cfg.DefaultLoanDays)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LIBRESHELF_ADDR", ":9090")
	t.Setenv("LIBRESHELF_DB_PATH", "/tmp/test.sqlite3")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("addr = %q, want env override :9090", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/test.sqlite3" {
		t.Errorf("db path = %q, want env override", cfg.DBPath)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libreshelf.yaml")
	content := "addr: \":7070\"\ndefault_loan_days: 30\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Addr != ":7070" {
		t.Errorf("addr = %q, want :7070 from file", cfg.Addr)
	}
	if cfg.DefaultLoanDays != 30 {
		t.Errorf("default loan days = %d, want 30 from file", cfg.DefaultLoanDays)
	}
	// Unspecified keys keep their defaults.
	if cfg.AdminUser != "admin" {
		t.Errorf("admin user = %q, want default", cfg.AdminUser)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(viper.New(), "/does/not/exist.yaml"); err == nil {
		t.Error("missing explicit config file should fail")
	}
}
