package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/models"
)

// AuditServiceProvider defines the interface for the audit trail.
type AuditServiceProvider interface {
	Record(entryType, level, message string, username, todoID *string)
	Recent(limit int) ([]models.AuditEntry, error)
}

// AuditService persists a trail of auth and task operations.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes a new audit entry. Failures are logged and swallowed: the
// audit trail never fails the operation it describes.
func (s *AuditService) Record(entryType, level, message string, username, todoID *string) {
	_, err := s.db.Exec(
		"INSERT INTO audit_log (id, type, level, message, username, todo_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		uuid.New().String(), entryType, level, message, username, todoID, time.Now().UTC(),
	)
	if err != nil {
		log.Error().Err(err).Str("type", entryType).Msg("Failed to record audit entry")
	}
}

// Recent retrieves the most recent audit entries.
func (s *AuditService) Recent(limit int) ([]models.AuditEntry, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, username, todo_id, created_at FROM audit_log ORDER BY created_at DESC, id ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var entry models.AuditEntry
		var username, todoID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Level, &entry.Message, &username, &todoID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if username.Valid {
			entry.Username = &username.String
		}
		if todoID.Valid {
			entry.TodoID = &todoID.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PruneOlderThan removes audit entries older than the cutoff and returns
// the number removed.
func (s *AuditService) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM audit_log WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
