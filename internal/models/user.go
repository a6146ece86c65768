package models

import "time"

// Role names known to the system. New users get RoleUser at registration;
// RoleAdmin is only handed out by seeding or manual assignment.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Role is a named permission group attached to a user.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"userName"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedOn    time.Time `json:"createdOn"`
	Roles        []Role    `json:"roles"`
}
