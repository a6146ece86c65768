package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/config"
	"github.com/isdelr/todo-manager-be/internal/database"
)

// newTestDB opens a fresh in-memory store with the full schema and the
// built-in roles.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New("file::memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A second connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, "", ""); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return db
}

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService(&config.Config{
		JWTSecret:        "test-secret",
		JWTIssuer:        "todo-manager",
		JWTAudience:      "todo-manager-client",
		JWTExpiryMinutes: 60,
	})
}

// insertUser creates a bare user row for todo tests that do not exercise
// the registration flow.
func insertUser(t *testing.T, db *sql.DB, username string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(
		"INSERT INTO users (id, username, first_name, last_name, email, password_hash, created_on) VALUES (?, ?, '', '', '', 'not-a-real-hash', ?)",
		id, username, time.Now().UTC())
	if err != nil {
		t.Fatalf("insert user %q: %v", username, err)
	}
	return id
}
