package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

func newValidTodo() *model.Todo {
	return &model.Todo{
		ID:              types.NewTodoID(),
		UserID:          "user-1",
		Title:           "Buy milk",
		Status:          types.TodoStatusOpen,
		ImportanceScore: 0.4,
		CreatedVia:      types.CreatedViaManual,
	}
}

func TestTodo_Validate(t *testing.T) {
	gt.NoError(t, newValidTodo().Validate())

	t.Run("title required", func(t *testing.T) {
		todo := newValidTodo()
		todo.Title = ""
		gt.Error(t, todo.Validate())
	})

	t.Run("score out of range", func(t *testing.T) {
		todo := newValidTodo()
		todo.ImportanceScore = 1.5
		gt.Error(t, todo.Validate())
	})

	t.Run("unknown origin", func(t *testing.T) {
		todo := newValidTodo()
		todo.CreatedVia = "email"
		gt.Error(t, todo.Validate())
	})

	t.Run("title too long", func(t *testing.T) {
		todo := newValidTodo()
		todo.Title = strings.Repeat("a", 201)
		gt.Error(t, todo.Validate())

		todo.Title = model.TruncateTitle(todo.Title)
		gt.NoError(t, todo.Validate())
	})
}

func TestTodo_WithStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	todo := newValidTodo()

	done := todo.WithStatus(types.TodoStatusDone, now)
	gt.Value(t, done.Status).Equal(types.TodoStatusDone)
	gt.Value(t, done.CompletedAt).NotNil()
	gt.B(t, done.CompletedAt.Equal(now)).True()

	reopened := done.WithStatus(types.TodoStatusOpen, now.Add(time.Hour))
	gt.Value(t, reopened.CompletedAt).Nil()
	gt.Value(t, todo.Status).Equal(types.TodoStatusOpen)
}

func TestTodo_IsOverdue(t *testing.T) {
	now := time.Date(2026, 6, 10, 0, 30, 0, 0, time.UTC)
	todo := newValidTodo()
	gt.B(t, todo.IsOverdue(now)).False()

	yesterday := model.DateOf(now).AddDays(-1)
	todo.Deadline = &yesterday
	gt.B(t, todo.IsOverdue(now)).True()

	todo.Status = types.TodoStatusDone
	gt.B(t, todo.IsOverdue(now)).False()
}

func TestBuildCompletionReport(t *testing.T) {
	from := model.Date{Year: 2026, Month: 6, Day: 1}
	to := model.Date{Year: 2026, Month: 6, Day: 3}
	at := func(day, hour int) *time.Time {
		v := time.Date(2026, 6, day, hour, 0, 0, 0, time.UTC)
		return &v
	}

	todos := []*model.Todo{
		{Status: types.TodoStatusDone, CreatedVia: types.CreatedViaManual, CompletedAt: at(1, 10)},
		{Status: types.TodoStatusDone, CreatedVia: types.CreatedViaSlackWebhook, CompletedAt: at(1, 23)},
		{Status: types.TodoStatusDone, CreatedVia: types.CreatedViaSlackWebhook, CompletedAt: at(3, 0)},
		{Status: types.TodoStatusDone, CreatedVia: types.CreatedViaManual, CompletedAt: at(5, 0)},
		{Status: types.TodoStatusOpen, CreatedVia: types.CreatedViaManual},
	}

	report := model.BuildCompletionReport(from, to, todos)
	gt.Array(t, report.Days).Length(3)
	gt.Value(t, report.Days[0].Count).Equal(2)
	gt.Value(t, report.Days[1].Count).Equal(0)
	gt.Value(t, report.Days[2].Count).Equal(1)
	gt.Value(t, report.TotalCompleted).Equal(3)
	gt.Value(t, report.ByCreatedVia[types.CreatedViaSlackWebhook]).Equal(2)
	gt.Value(t, report.ByCreatedVia[types.CreatedViaManual]).Equal(1)
}
