package notify

import (
	"context"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

// Subject todo creation events are published on
const SubjectTodoCreated = "quadrant.todo.created"

// Notifier pushes realtime notifications about committed todos
type Notifier interface {
	TodoCreated(ctx context.Context, todo *model.Todo) error
}

// TodoEvent is the JSON payload published for a todo
type TodoEvent struct {
	TodoID          string  `json:"todo_id"`
	UserID          string  `json:"user_id"`
	Title           string  `json:"title"`
	Status          string  `json:"status"`
	Deadline        string  `json:"deadline,omitempty"`
	ImportanceScore float64 `json:"importance_score"`
	CreatedVia      string  `json:"created_via"`
	CreatedAt       string  `json:"created_at"`
}

func newTodoEvent(todo *model.Todo) *TodoEvent {
	ev := &TodoEvent{
		TodoID:          todo.ID.String(),
		UserID:          todo.UserID.String(),
		Title:           todo.Title,
		Status:          todo.Status.Normalize().String(),
		ImportanceScore: todo.ImportanceScore,
		CreatedVia:      todo.CreatedVia.String(),
		CreatedAt:       todo.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if todo.Deadline != nil {
		ev.Deadline = todo.Deadline.String()
	}
	return ev
}
