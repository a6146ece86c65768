package services

import (
	"database/sql"

	"github.com/isdelr/todo-manager-be/internal/models"
)

// UserServiceProvider defines the interface for user profile lookups.
type UserServiceProvider interface {
	GetByUsername(username string) (models.User, error)
}

// UserService provides read access to user profiles.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetByUsername retrieves a user's profile, including roles. Username
// comparison is case-sensitive.
func (s *UserService) GetByUsername(username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, first_name, last_name, email, created_on FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Email, &user.CreatedOn)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	roles, err := s.rolesForUser(user.ID)
	if err != nil {
		return models.User{}, err
	}
	user.Roles = roles
	return user, nil
}

func (s *UserService) rolesForUser(userID string) ([]models.Role, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ? ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
