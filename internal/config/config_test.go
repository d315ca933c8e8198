package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDataDir, EnvInitialBudget, EnvAdminUser, EnvAdminPassword, EnvAdminEmail, EnvHTTPAddr} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.DataDir != "data" || cfg.AdminUser != "admin" || cfg.AdminPassword != "admin123" || cfg.AdminEmail != "admin@gmail.com" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.InitialBudget.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("budget = %s, want 15000", cfg.InitialBudget)
	}
	if cfg.HTTPAddr != "" {
		t.Fatalf("http should be disabled by default, got %q", cfg.HTTPAddr)
	}
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataDir, "/tmp/dine")
	t.Setenv(EnvInitialBudget, "250.50")
	t.Setenv(EnvHTTPAddr, ":9090")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.DataDir != "/tmp/dine" || cfg.HTTPAddr != ":9090" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.InitialBudget.Equal(decimal.RequireFromString("250.5")) {
		t.Fatalf("budget = %s", cfg.InitialBudget)
	}
}

func TestInvalidBudget(t *testing.T) {
	for _, v := range []string{"lots", "-1"} {
		clearEnv(t)
		t.Setenv(EnvInitialBudget, v)
		if _, err := FromEnv(); err == nil {
			t.Fatalf("expected error for budget %q", v)
		}
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even to "".
	os.Unsetenv(EnvAdminUser)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvAdminUser+"=chef\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdminUser != "chef" {
		t.Fatalf("admin user = %q, want chef", cfg.AdminUser)
	}
}
