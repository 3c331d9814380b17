package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// TodoRepository stores todos. All access is scoped by owner.
type TodoRepository interface {
	// Create inserts the todo and returns the stored row in one operation
	Create(ctx context.Context, todo *model.Todo) (*model.Todo, error)

	Get(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error)

	// List returns the user's todos ordered by importance (highest first)
	List(ctx context.Context, userID types.UserID, opts ...ListTodoOption) ([]*model.Todo, error)

	// Update replaces the todo and returns the stored row. It returns
	// ErrNotFound when missing.
	Update(ctx context.Context, todo *model.Todo) (*model.Todo, error)

	Delete(ctx context.Context, userID types.UserID, id types.TodoID) error
}

// ListTodoOption is a functional option for filtering todos in List
type ListTodoOption func(*listTodoConfig)

type listTodoConfig struct {
	status         *types.TodoStatus
	completedSince *time.Time
}

// WithTodoStatus filters todos by status
func WithTodoStatus(status types.TodoStatus) ListTodoOption {
	return func(c *listTodoConfig) {
		c.status = &status
	}
}

// WithCompletedSince keeps todos completed at or after t
func WithCompletedSince(t time.Time) ListTodoOption {
	return func(c *listTodoConfig) {
		c.completedSince = &t
	}
}

// BuildListTodoConfig builds a listTodoConfig from options
func BuildListTodoConfig(opts ...ListTodoOption) *listTodoConfig {
	cfg := &listTodoConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listTodoConfig) Status() *types.TodoStatus {
	return c.status
}

// CompletedSince returns the completion lower bound, or nil if not set
func (c *listTodoConfig) CompletedSince() *time.Time {
	return c.completedSince
}

// Match applies the filters to an already loaded todo
func (c *listTodoConfig) Match(t *model.Todo) bool {
	if c.status != nil && t.Status.Normalize() != *c.status {
		return false
	}
	if c.completedSince != nil && (t.CompletedAt == nil || t.CompletedAt.Before(*c.completedSince)) {
		return false
	}
	return true
}
