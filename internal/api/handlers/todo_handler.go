package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/models"
	"github.com/isdelr/todo-manager-be/internal/services"
)

// TodoHandler handles HTTP requests for todo management. Every operation
// runs scoped to the acting principal resolved from the bearer token.
type TodoHandler struct {
	service services.TodoServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.TodoServiceProvider) *TodoHandler {
	return &TodoHandler{service: service}
}

// actingUsername resolves the authenticated principal's username from the
// request context.
func actingUsername(r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFrom(r)
	if !ok || claims.Username == "" {
		return "", false
	}
	return claims.Username, true
}

// GetAll returns the acting user's tasks, filtered and sorted per the
// query parameters.
func (h *TodoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	q := r.URL.Query()
	todos, err := h.service.GetFiltered(username, q.Get("search"), q.Get("category"), q.Get("priority"), q.Get("sort"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			respondFail(w, http.StatusBadRequest, "Invalid category filter.")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to load todos")
		respondFail(w, http.StatusInternalServerError, "Something went wrong while loading your tasks. Please try again.")
		return
	}

	respondOK(w, http.StatusOK, todos, "Todos loaded successfully.")
}

// GetByID returns a single owned task.
func (h *TodoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	id := chi.URLParam(r, "id")
	todo, err := h.service.GetByID(id, username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondFail(w, http.StatusNotFound, "Task not found.")
			return
		}
		log.Error().Err(err).Str("todo_id", id).Str("username", username).Msg("Failed to fetch task")
		respondFail(w, http.StatusInternalServerError, "Could not retrieve the task. Please try again later.")
		return
	}

	respondOK(w, http.StatusOK, todo, "Task retrieved successfully.")
}

// Create persists a new task for the acting user.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	var draft models.TodoDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	created, err := h.service.Create(username, draft)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEnumValue) || errors.Is(err, services.ErrEmptyTitle) {
			respondFail(w, http.StatusBadRequest, "Invalid task data: "+reason(err))
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to create task")
		respondFail(w, http.StatusInternalServerError, "Unable to create the task right now. Please try again.")
		return
	}

	respondOK(w, http.StatusCreated, created, "Task created successfully.")
}

// Update overwrites an owned task's mutable fields.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	var draft models.TodoDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.service.Update(id, username, draft)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondFail(w, http.StatusNotFound, "Task not found.")
		case errors.Is(err, services.ErrInvalidEnumValue), errors.Is(err, services.ErrEmptyTitle):
			respondFail(w, http.StatusBadRequest, "Invalid task data: "+reason(err))
		default:
			log.Error().Err(err).Str("todo_id", id).Str("username", username).Msg("Failed to update task")
			respondFail(w, http.StatusInternalServerError, "Could not update the task. Please try again.")
		}
		return
	}

	respondOK(w, http.StatusOK, updated, "Task updated successfully.")
}

// Delete removes an owned task. Deleting an already-gone task is a 404,
// never a server error.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.service.Delete(id, username)
	if err != nil {
		log.Error().Err(err).Str("todo_id", id).Str("username", username).Msg("Failed to delete task")
		respondFail(w, http.StatusInternalServerError, "Could not delete the task. Please try again later.")
		return
	}
	if !deleted {
		respondFail(w, http.StatusNotFound, "Task not found.")
		return
	}

	respondOK(w, http.StatusOK, nil, "Task deleted successfully.")
}

// Toggle flips an owned task's completion state.
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	id := chi.URLParam(r, "id")
	todo, err := h.service.ToggleCompletion(id, username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondFail(w, http.StatusNotFound, "Task not found.")
			return
		}
		log.Error().Err(err).Str("todo_id", id).Str("username", username).Msg("Failed to toggle task")
		respondFail(w, http.StatusInternalServerError, "Could not update task status. Try again shortly.")
		return
	}

	respondOK(w, http.StatusOK, todo, "Task status updated.")
}

// Search returns the acting user's tasks matching the query term.
func (h *TodoHandler) Search(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	query := r.URL.Query().Get("query")
	results, err := h.service.Search(query, username)
	if err != nil {
		log.Error().Err(err).Str("query", query).Str("username", username).Msg("Failed to search tasks")
		respondFail(w, http.StatusInternalServerError, "Could not complete the search. Please try again.")
		return
	}

	respondOK(w, http.StatusOK, results, "Search completed successfully.")
}

// GetByCategory returns the acting user's tasks in the named category.
func (h *TodoHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	name := chi.URLParam(r, "name")
	if strings.TrimSpace(name) == "" {
		respondFail(w, http.StatusBadRequest, "Category name is required.")
		return
	}

	items, err := h.service.GetByCategory(name, username)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			respondFail(w, http.StatusBadRequest, "Invalid category name.")
			return
		}
		log.Error().Err(err).Str("category", name).Str("username", username).Msg("Failed to fetch category")
		respondFail(w, http.StatusInternalServerError, "Could not load tasks from that category.")
		return
	}

	respondOK(w, http.StatusOK, items, fmt.Sprintf("Tasks in '%s' loaded.", name))
}

// Stats returns the aggregate counters over the acting user's task set.
func (h *TodoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	username, ok := actingUsername(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "You are not logged in. Please login to continue.")
		return
	}

	stats, err := h.service.Stats(username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to load task stats")
		respondFail(w, http.StatusInternalServerError, "Could not load task stats. Try again later.")
		return
	}

	respondOK(w, http.StatusOK, stats, "Task statistics loaded.")
}

// reason strips the sentinel prefix off a validation error, leaving the
// client-safe detail.
func reason(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
