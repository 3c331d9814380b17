package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// maxTodoTitleLength bounds titles coming from manual input and LLM output
const maxTodoTitleLength = 200

// Todo is a task in the user's matrix
type Todo struct {
	ID              types.TodoID
	UserID          types.UserID
	Title           string
	Body            string
	Status          types.TodoStatus
	Deadline        *Date
	ImportanceScore float64 // 0.0 - 1.0
	CreatedVia      types.CreatedVia
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the todo before it is persisted
func (t *Todo) Validate() error {
	if t.UserID == "" {
		return goerr.New("todo user ID is required")
	}
	if t.Title == "" {
		return goerr.New("todo title is required")
	}
	if len([]rune(t.Title)) > maxTodoTitleLength {
		return goerr.New("todo title is too long", goerr.V("length", len([]rune(t.Title))), goerr.V("max", maxTodoTitleLength))
	}
	if !t.Status.Normalize().IsValid() {
		return goerr.New("invalid todo status", goerr.V("status", t.Status))
	}
	if !t.CreatedVia.IsValid() {
		return goerr.New("invalid todo origin", goerr.V("created_via", t.CreatedVia))
	}
	if t.ImportanceScore < 0 || t.ImportanceScore > 1 {
		return goerr.New("importance score must be between 0 and 1", goerr.V("score", t.ImportanceScore))
	}
	return nil
}

// IsOverdue reports whether an open todo's deadline is before today
func (t *Todo) IsOverdue(now time.Time) bool {
	if t.Deadline == nil || t.Status.Normalize() == types.TodoStatusDone {
		return false
	}
	return t.Deadline.Before(DateOf(now))
}

// WithStatus returns a copy of the todo moved to status
func (t Todo) WithStatus(status types.TodoStatus, now time.Time) Todo {
	now = now.UTC()
	t.Status = status
	t.UpdatedAt = now
	if status == types.TodoStatusDone {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	return t
}

// TruncateTitle cuts s to the maximum title length
func TruncateTitle(s string) string {
	r := []rune(s)
	if len(r) <= maxTodoTitleLength {
		return s
	}
	return string(r[:maxTodoTitleLength-1]) + "…"
}
