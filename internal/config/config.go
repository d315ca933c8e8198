// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Environment variable names.
const (
	EnvDataDir       = "OTTODINE_DATA_DIR"
	EnvInitialBudget = "OTTODINE_INITIAL_BUDGET"
	EnvAdminUser     = "OTTODINE_ADMIN_USER"
	EnvAdminPassword = "OTTODINE_ADMIN_PASSWORD"
	EnvAdminEmail    = "OTTODINE_ADMIN_EMAIL"
	EnvHTTPAddr      = "OTTODINE_HTTP_ADDR"
)

// Defaults applied when a variable is unset or empty.
const (
	DefaultDataDir       = "data"
	DefaultInitialBudget = "15000"
	DefaultAdminUser     = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@gmail.com"
)

// Config holds every setting the binary needs.
type Config struct {
	DataDir       string
	InitialBudget decimal.Decimal
	AdminUser     string
	AdminPassword string
	AdminEmail    string
	HTTPAddr      string // empty disables the HTTP board
}

// Load reads .env files (a missing file is fine) and then the environment.
func Load(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	budget, err := decimal.NewFromString(get(EnvInitialBudget, DefaultInitialBudget))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", EnvInitialBudget, err)
	}
	if budget.IsNegative() {
		return Config{}, fmt.Errorf("%s must not be negative, got %s", EnvInitialBudget, budget)
	}

	return Config{
		DataDir:       get(EnvDataDir, DefaultDataDir),
		InitialBudget: budget,
		AdminUser:     get(EnvAdminUser, DefaultAdminUser),
		AdminPassword: get(EnvAdminPassword, DefaultAdminPassword),
		AdminEmail:    get(EnvAdminEmail, DefaultAdminEmail),
		HTTPAddr:      get(EnvHTTPAddr, ""),
	}, nil
}

func get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
