package models

import (
	"fmt"
	"strings"
	"time"
)

// Category partitions a todo into one of two fixed buckets.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
)

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "work":
		return CategoryWork, nil
	case "personal":
		return CategoryPersonal, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Priority ranks a todo. Ordinals order Low < Medium < High so a
// descending sort yields High first.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Ordinal returns the sort rank of the priority.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Sort modes accepted by the todo list endpoint. Anything unrecognized
// falls back to SortCreatedDesc.
const (
	SortCreatedAsc   = "created_asc"
	SortCreatedDesc  = "created_desc"
	SortPriorityDesc = "priority_desc"
	SortTitleAsc     = "title_asc"
)

// Todo is a single task owned by exactly one user. CompletedAt is non-nil
// exactly when IsCompleted is true; only the toggle operation maintains
// that pairing, a full update writes both fields as supplied.
type Todo struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedOn   time.Time  `json:"createdOn"`
	UpdatedOn   time.Time  `json:"updatedOn"`
	CompletedAt *time.Time `json:"completedAt"`
	DueDate     *time.Time `json:"dueDate"`
}

// TodoDraft is the client-supplied shape for create and update requests.
// Category and priority arrive as free-form strings and are parsed by the
// service; unparseable values fail the whole operation.
type TodoDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedOn   *time.Time `json:"createdOn"`
	CompletedAt *time.Time `json:"completedAt"`
	DueDate     *time.Time `json:"dueDate"`
}

// TodoStats aggregates a user's current task set. Computed fresh on every
// request, never stored.
type TodoStats struct {
	Total          int `json:"total"`
	Work           int `json:"work"`
	Personal       int `json:"personal"`
	Completed      int `json:"completed"`
	HighPriority   int `json:"highPriority"`
	MediumPriority int `json:"mediumPriority"`
	LowPriority    int `json:"lowPriority"`
}
