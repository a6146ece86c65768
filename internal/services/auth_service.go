package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/models"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// AuthServiceProvider defines the interface for authentication flows.
type AuthServiceProvider interface {
	Register(in RegisterInput) error
	Login(username, password string) (LoginResult, error)
}

// AuthService composes the user store and the token service to produce
// login and registration outcomes. It is stateless per request; there is
// no server-side session and logout is a client-side token discard.
type AuthService struct {
	db     *sql.DB
	users  UserServiceProvider
	tokens *auth.TokenService
	audit  AuditServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, users UserServiceProvider, tokens *auth.TokenService, audit AuditServiceProvider) *AuthService {
	return &AuthService{db: db, users: users, tokens: tokens, audit: audit}
}

// Register validates and creates a new user account with the User role.
func (s *AuthService) Register(in RegisterInput) error {
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if reasons := passwordPolicyViolations(in); len(reasons) > 0 {
		return &RegistrationRejectedError{Reasons: reasons}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", in.Username).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.New().String()
	stmt, err := s.db.Prepare("INSERT INTO users (id, username, first_name, last_name, email, password_hash, created_on) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(userID, in.Username, in.FirstName, in.LastName, in.Email, string(hashed), time.Now().UTC()); err != nil {
		return err
	}

	if _, err := s.db.Exec("INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name = ?", userID, models.RoleUser); err != nil {
		return err
	}

	s.audit.Record("auth.register", "info", fmt.Sprintf("User %q registered.", in.Username), &in.Username, nil)
	return nil
}

// Login verifies credentials and issues a token. Unknown usernames and
// wrong passwords produce the same ErrInvalidCredentials so the caller
// cannot enumerate accounts.
func (s *AuthService) Login(username, password string) (LoginResult, error) {
	var hash string
	err := s.db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err != nil {
		if err == sql.ErrNoRows {
			s.audit.Record("auth.login.failed", "warn", "Failed login attempt.", &username, nil)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.audit.Record("auth.login.failed", "warn", "Failed login attempt.", &username, nil)
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return LoginResult{}, err
	}

	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
	}

	token, err := s.tokens.Generate(user, roleNames)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.audit.Record("auth.login", "info", "User logged in.", &username, nil)
	return LoginResult{Token: token, ExpiresAt: s.tokens.Expiry(), User: user}, nil
}

// passwordPolicyViolations collects the identity policy reasons a
// registration would be rejected with.
func passwordPolicyViolations(in RegisterInput) []string {
	var reasons []string
	if strings.TrimSpace(in.Username) == "" {
		reasons = append(reasons, "Username is required.")
	}
	if len(in.Password) < 6 {
		reasons = append(reasons, "Password must be at least 6 characters.")
	}
	var hasDigit bool
	for _, r := range in.Password {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		reasons = append(reasons, "Password must contain at least one digit.")
	}
	return reasons
}
