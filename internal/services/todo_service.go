package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/models"
)

// TodoServiceProvider defines the interface for todo services. Every
// operation is scoped to the acting principal's username; a todo owned by
// someone else behaves exactly like one that does not exist.
type TodoServiceProvider interface {
	GetFiltered(ownerUsername, search, category, priority, sort string) ([]models.Todo, error)
	GetByID(id, ownerUsername string) (models.Todo, error)
	Search(query, ownerUsername string) ([]models.Todo, error)
	GetByCategory(categoryName, ownerUsername string) ([]models.Todo, error)
	Create(ownerUsername string, draft models.TodoDraft) (models.Todo, error)
	Update(id, ownerUsername string, draft models.TodoDraft) (models.Todo, error)
	ToggleCompletion(id, ownerUsername string) (models.Todo, error)
	Delete(id, ownerUsername string) (bool, error)
	Stats(ownerUsername string) (models.TodoStats, error)
}

// TodoService provides the owner-scoped task query and mutation engine.
type TodoService struct {
	db    *sql.DB
	audit AuditServiceProvider
	now   func() time.Time
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sql.DB, audit AuditServiceProvider) *TodoService {
	return &TodoService{db: db, audit: audit, now: time.Now}
}

const todoColumns = "t.id, t.owner_id, t.title, t.description, t.category, t.priority, t.is_completed, t.created_on, t.updated_on, t.completed_at, t.due_date"

const ownerScope = " FROM todos t JOIN users u ON u.id = t.owner_id WHERE u.username = ?"

// GetFiltered returns the owner's tasks matching the given filters, in
// the given sort order. Filters compose conjunctively on top of the
// owner predicate:
//   - a blank search is a no-op; otherwise title or description must
//     contain the search term (ASCII case-insensitive, same rule for both)
//   - category "all" (any casing) or blank means no category restriction;
//     an unparseable category fails the whole request
//   - an unparseable priority is skipped, not an error (historical
//     asymmetry with category, kept intentionally)
func (s *TodoService) GetFiltered(ownerUsername, search, category, priority, sort string) ([]models.Todo, error) {
	query := "SELECT " + todoColumns + ownerScope
	args := []interface{}{ownerUsername}

	if q := strings.TrimSpace(search); q != "" {
		query += " AND (instr(lower(t.title), lower(?)) > 0 OR instr(lower(t.description), lower(?)) > 0)"
		args = append(args, q, q)
	}

	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, "all") {
		parsed, err := models.ParseCategory(c)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
		}
		query += " AND t.category = ?"
		args = append(args, string(parsed))
	}

	if p := strings.TrimSpace(priority); p != "" {
		if parsed, err := models.ParsePriority(p); err == nil {
			query += " AND t.priority = ?"
			args = append(args, string(parsed))
		} else {
			log.Debug().Str("priority", p).Str("username", ownerUsername).Msg("Skipping unparseable priority filter")
		}
	}

	rows, err := s.db.Query(query+orderClause(sort), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

// orderClause maps a sort mode to SQL. Every mode tie-breaks on id so the
// ordering is a total order and repeated calls agree.
func orderClause(sort string) string {
	switch sort {
	case models.SortCreatedAsc:
		return " ORDER BY t.created_on ASC, t.id ASC"
	case models.SortPriorityDesc:
		return " ORDER BY CASE t.priority WHEN 'High' THEN 2 WHEN 'Medium' THEN 1 ELSE 0 END DESC, t.id ASC"
	case models.SortTitleAsc:
		return " ORDER BY t.title ASC, t.id ASC"
	default: // models.SortCreatedDesc and anything unrecognized
		return " ORDER BY t.created_on DESC, t.id ASC"
	}
}

// GetByID retrieves a single task scoped to its owner.
func (s *TodoService) GetByID(id, ownerUsername string) (models.Todo, error) {
	row := s.db.QueryRow("SELECT "+todoColumns+ownerScope+" AND t.id = ?", ownerUsername, id)
	todo, err := scanTodo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, err
	}
	return todo, nil
}

// Search returns the owner's tasks whose title or description contains
// the query. It shares the list engine, so results come back newest
// first.
func (s *TodoService) Search(query, ownerUsername string) ([]models.Todo, error) {
	return s.GetFiltered(ownerUsername, query, "", "", "")
}

// GetByCategory returns the owner's tasks in the given category. Unlike
// the list filter there is no "all" sentinel here; the name must parse.
func (s *TodoService) GetByCategory(categoryName, ownerUsername string) ([]models.Todo, error) {
	parsed, err := models.ParseCategory(categoryName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, categoryName)
	}

	rows, err := s.db.Query(
		"SELECT "+todoColumns+ownerScope+" AND t.category = ? ORDER BY t.created_on DESC, t.id ASC",
		ownerUsername, string(parsed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

// Create validates and persists a new task for the owner. CreatedOn
// defaults to the server clock when the client does not supply one.
func (s *TodoService) Create(ownerUsername string, draft models.TodoDraft) (models.Todo, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return models.Todo{}, ErrEmptyTitle
	}
	category, priority, err := parseDraftEnums(draft)
	if err != nil {
		return models.Todo{}, err
	}

	ownerID, err := s.resolveOwnerID(ownerUsername)
	if err != nil {
		return models.Todo{}, err
	}

	now := s.now().UTC()
	createdOn := now
	if draft.CreatedOn != nil {
		createdOn = draft.CreatedOn.UTC()
	}

	id := uuid.New().String()
	stmt, err := s.db.Prepare(`
		INSERT INTO todos (id, owner_id, title, description, category, priority, is_completed, created_on, updated_on, completed_at, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.Todo{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(id, ownerID, draft.Title, draft.Description, string(category), string(priority),
		draft.IsCompleted, createdOn, now, nullableTime(draft.CompletedAt), nullableTime(draft.DueDate))
	if err != nil {
		return models.Todo{}, err
	}

	s.audit.Record("todo.create", "info", fmt.Sprintf("Task %q created.", draft.Title), &ownerUsername, &id)
	return s.GetByID(id, ownerUsername)
}

// Update overwrites all mutable fields of an owned task and refreshes
// updated_on. Completion fields are written as supplied; only
// ToggleCompletion re-derives completed_at from the completion state.
func (s *TodoService) Update(id, ownerUsername string, draft models.TodoDraft) (models.Todo, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return models.Todo{}, ErrEmptyTitle
	}
	category, priority, err := parseDraftEnums(draft)
	if err != nil {
		return models.Todo{}, err
	}

	existing, err := s.GetByID(id, ownerUsername)
	if err != nil {
		return models.Todo{}, err
	}

	_, err = s.db.Exec(`
		UPDATE todos SET title = ?, description = ?, category = ?, priority = ?, is_completed = ?, completed_at = ?, due_date = ?, updated_on = ?
		WHERE id = ?`,
		draft.Title, draft.Description, string(category), string(priority),
		draft.IsCompleted, nullableTime(draft.CompletedAt), nullableTime(draft.DueDate), s.now().UTC(), existing.ID)
	if err != nil {
		return models.Todo{}, err
	}

	s.audit.Record("todo.update", "info", fmt.Sprintf("Task %q updated.", draft.Title), &ownerUsername, &id)
	return s.GetByID(id, ownerUsername)
}

// ToggleCompletion flips the completion state of an owned task, setting
// completed_at when the task becomes complete and clearing it when it
// becomes incomplete again.
func (s *TodoService) ToggleCompletion(id, ownerUsername string) (models.Todo, error) {
	todo, err := s.GetByID(id, ownerUsername)
	if err != nil {
		return models.Todo{}, err
	}

	now := s.now().UTC()
	completed := !todo.IsCompleted
	var completedAt interface{}
	if completed {
		completedAt = now
	}

	_, err = s.db.Exec("UPDATE todos SET is_completed = ?, completed_at = ?, updated_on = ? WHERE id = ?",
		completed, completedAt, now, todo.ID)
	if err != nil {
		return models.Todo{}, err
	}

	s.audit.Record("todo.toggle", "info", fmt.Sprintf("Task %q completion set to %v.", todo.Title, completed), &ownerUsername, &id)
	return s.GetByID(id, ownerUsername)
}

// Delete removes an owned task. It reports whether anything was removed:
// deleting a missing (or foreign) task is false, never an error.
func (s *TodoService) Delete(id, ownerUsername string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM todos WHERE id = ? AND owner_id = (SELECT id FROM users WHERE username = ?)", id, ownerUsername)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	s.audit.Record("todo.delete", "info", "Task deleted.", &ownerUsername, &id)
	return true, nil
}

// Stats reduces the owner's full task set to its seven counters. Linear
// in the owner's task count, same as the unpaginated list.
func (s *TodoService) Stats(ownerUsername string) (models.TodoStats, error) {
	var stats models.TodoStats
	err := s.db.QueryRow(`
		SELECT COUNT(1),
			COALESCE(SUM(CASE WHEN t.category = 'Work' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.category = 'Personal' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.is_completed THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.priority = 'High' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.priority = 'Medium' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.priority = 'Low' THEN 1 ELSE 0 END), 0)`+
		ownerScope, ownerUsername).
		Scan(&stats.Total, &stats.Work, &stats.Personal, &stats.Completed,
			&stats.HighPriority, &stats.MediumPriority, &stats.LowPriority)
	return stats, err
}

// resolveOwnerID maps the acting username to its user id. Authentication
// already guaranteed the username exists, so a miss here is a
// data-integrity fault rather than a user-facing error.
func (s *TodoService) resolveOwnerID(username string) (string, error) {
	var id string
	err := s.db.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("owner %q has no identity record", username)
	}
	return id, err
}

func parseDraftEnums(draft models.TodoDraft) (models.Category, models.Priority, error) {
	category, err := models.ParseCategory(draft.Category)
	if err != nil {
		return "", "", fmt.Errorf("%w: category %q", ErrInvalidEnumValue, draft.Category)
	}
	priority, err := models.ParsePriority(draft.Priority)
	if err != nil {
		return "", "", fmt.Errorf("%w: priority %q", ErrInvalidEnumValue, draft.Priority)
	}
	return category, priority, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(row rowScanner) (models.Todo, error) {
	var todo models.Todo
	var completedAt, dueDate sql.NullTime
	err := row.Scan(&todo.ID, &todo.OwnerID, &todo.Title, &todo.Description, &todo.Category, &todo.Priority,
		&todo.IsCompleted, &todo.CreatedOn, &todo.UpdatedOn, &completedAt, &dueDate)
	if err != nil {
		return models.Todo{}, err
	}
	if completedAt.Valid {
		todo.CompletedAt = &completedAt.Time
	}
	if dueDate.Valid {
		todo.DueDate = &dueDate.Time
	}
	return todo, nil
}

func scanTodos(rows *sql.Rows) ([]models.Todo, error) {
	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}
