package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	CORSOrigin   string

	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	JWTExpiryMinutes int

	SeedAdminUsername string
	SeedAdminPassword string

	AuditRetentionDays int
}

// Load loads configuration from environment variables or sets defaults.
// The JWT signing secret has no default: a missing secret is a startup
// configuration error, never a per-request one.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	expiry, err := strconv.Atoi(getEnv("JWT_EXPIRY_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_MINUTES: %w", err)
	}

	retention, err := strconv.Atoi(getEnv("AUDIT_RETENTION_DAYS", "90"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_DAYS: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./todo.db"),
		CORSOrigin:         getEnv("CORS_ORIGIN", "http://localhost:3000"),
		JWTSecret:          secret,
		JWTIssuer:          getEnv("JWT_ISSUER", "todo-manager"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "todo-manager-client"),
		JWTExpiryMinutes:   expiry,
		SeedAdminUsername:  getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminPassword:  os.Getenv("SEED_ADMIN_PASSWORD"),
		AuditRetentionDays: retention,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
