package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type todoRepository struct {
	mu    sync.RWMutex
	todos map[types.TodoID]*model.Todo
}

func newTodoRepository() *todoRepository {
	return &todoRepository{
		todos: make(map[types.TodoID]*model.Todo),
	}
}

func copyTodo(t *model.Todo) *model.Todo {
	c := *t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if todo.ID == "" {
		todo.ID = types.NewTodoID()
	}
	if _, ok := r.todos[todo.ID]; ok {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "todo already exists", goerr.V("todo_id", todo.ID))
	}

	stored := copyTodo(todo)
	stored.Status = stored.Status.Normalize()
	r.todos[todo.ID] = stored
	return copyTodo(stored), nil
}

func (r *todoRepository) Get(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return copyTodo(t), nil
}

func (r *todoRepository) List(ctx context.Context, userID types.UserID, opts ...interfaces.ListTodoOption) ([]*model.Todo, error) {
	cfg := interfaces.BuildListTodoConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Todo, 0)
	for _, t := range r.todos {
		if t.UserID != userID || !cfg.Match(t) {
			continue
		}
		result = append(result, copyTodo(t))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ImportanceScore != result[j].ImportanceScore {
			return result[i].ImportanceScore > result[j].ImportanceScore
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", todo.ID))
	}

	stored := copyTodo(todo)
	stored.Status = stored.Status.Normalize()
	stored.CreatedAt = existing.CreatedAt
	stored.CreatedVia = existing.CreatedVia
	r.todos[todo.ID] = stored
	return copyTodo(stored), nil
}

func (r *todoRepository) Delete(ctx context.Context, userID types.UserID, id types.TodoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", id))
	}
	delete(r.todos, id)
	return nil
}
