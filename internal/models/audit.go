package models

import "time"

// AuditEntry records a single auth or task operation.
type AuditEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Username  *string   `json:"username,omitempty"`
	TodoID    *string   `json:"todoId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
