package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/todo-manager-be/internal/models"
)

// Seed ensures the built-in roles exist and provisions a bootstrap admin
// account. The admin is only created when no user with that username
// exists yet and a seed password was configured; reruns are no-ops.
func Seed(db *sql.DB, adminUsername, adminPassword string) error {
	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		_, err := db.Exec("INSERT INTO roles (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING", uuid.New().String(), name)
		if err != nil {
			return fmt.Errorf("failed to seed role %q: %w", name, err)
		}
	}

	if adminUsername == "" || adminPassword == "" {
		log.Info().Msg("No seed admin credentials configured, skipping admin bootstrap")
		return nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", adminUsername).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	userID := uuid.New().String()
	_, err = db.Exec(
		"INSERT INTO users (id, username, first_name, last_name, email, password_hash, created_on) VALUES (?, ?, ?, ?, ?, ?, ?)",
		userID, adminUsername, "Admin", "User", "", string(hashed), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create seed admin user: %w", err)
	}

	for _, role := range []string{models.RoleAdmin, models.RoleUser} {
		_, err = db.Exec("INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name = ?", userID, role)
		if err != nil {
			return fmt.Errorf("failed to assign role %q to seed admin: %w", role, err)
		}
	}

	log.Info().Str("username", adminUsername).Msg("Seed admin user created")
	return nil
}
