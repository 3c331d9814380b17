package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

func newTodo(userID types.UserID, title string, score float64) *model.Todo {
	ts := now()
	deadline := model.DateOf(ts)
	return &model.Todo{
		ID:              types.NewTodoID(),
		UserID:          userID,
		Title:           title,
		Status:          types.TodoStatusOpen,
		Deadline:        &deadline,
		ImportanceScore: score,
		CreatedVia:      types.CreatedViaManual,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
}

func TestTodoRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("Create returns stored row", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			todo := newTodo(newUserID(), "Buy milk", 0.8)
			todo.CreatedVia = types.CreatedViaSlackWebhook

			created, err := repo.Todo().Create(ctx, todo)
			gt.NoError(t, err).Required()
			gt.Value(t, created.ID).Equal(todo.ID)
			gt.Value(t, created.Title).Equal("Buy milk")
			gt.Value(t, created.CreatedVia).Equal(types.CreatedViaSlackWebhook)
			gt.Value(t, created.Deadline).NotNil().Required()
			gt.Value(t, *created.Deadline).Equal(*todo.Deadline)

			got, err := repo.Todo().Get(ctx, todo.UserID, todo.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got).NotNil().Required()
			gt.Value(t, got.Status).Equal(types.TodoStatusOpen)
		})

		t.Run("Get is scoped by owner", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			todo := newTodo(newUserID(), "Private", 0.5)
			_, err := repo.Todo().Create(ctx, todo)
			gt.NoError(t, err).Required()

			got, err := repo.Todo().Get(ctx, newUserID(), todo.ID)
			gt.NoError(t, err)
			gt.Value(t, got).Nil()
		})

		t.Run("List orders by importance and filters", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			userID := newUserID()

			low := newTodo(userID, "low", 0.2)
			high := newTodo(userID, "high", 0.9)
			done := newTodo(userID, "done", 0.6)
			completedAt := now()
			done.Status = types.TodoStatusDone
			done.CompletedAt = &completedAt
			for _, td := range []*model.Todo{low, high, done} {
				_, err := repo.Todo().Create(ctx, td)
				gt.NoError(t, err).Required()
			}

			all, err := repo.Todo().List(ctx, userID)
			gt.NoError(t, err).Required()
			gt.Array(t, all).Length(3).Required()
			gt.Value(t, all[0].ID).Equal(high.ID)
			gt.Value(t, all[1].ID).Equal(done.ID)
			gt.Value(t, all[2].ID).Equal(low.ID)

			open, err := repo.Todo().List(ctx, userID, interfaces.WithTodoStatus(types.TodoStatusOpen))
			gt.NoError(t, err).Required()
			gt.Array(t, open).Length(2)

			completed, err := repo.Todo().List(ctx, userID, interfaces.WithCompletedSince(completedAt.Add(-time.Hour)))
			gt.NoError(t, err).Required()
			gt.Array(t, completed).Length(1).Required()
			gt.Value(t, completed[0].ID).Equal(done.ID)
		})

		t.Run("Update keeps creation fields", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			todo := newTodo(newUserID(), "original", 0.4)
			todo.CreatedVia = types.CreatedViaSlackWebhook
			_, err := repo.Todo().Create(ctx, todo)
			gt.NoError(t, err).Required()

			changed := *todo
			changed.Title = "renamed"
			changed.Deadline = nil
			changed.CreatedVia = types.CreatedViaManual
			changed.UpdatedAt = now().Add(time.Minute)

			updated, err := repo.Todo().Update(ctx, &changed)
			gt.NoError(t, err).Required()
			gt.Value(t, updated.Title).Equal("renamed")
			gt.Value(t, updated.Deadline).Nil()
			gt.Value(t, updated.CreatedVia).Equal(types.CreatedViaSlackWebhook)
		})

		t.Run("Update and Delete missing todo", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			todo := newTodo(newUserID(), "ghost", 0.3)

			_, err := repo.Todo().Update(ctx, todo)
			gt.Error(t, err).Is(interfaces.ErrNotFound)
			gt.Error(t, repo.Todo().Delete(ctx, todo.UserID, todo.ID)).Is(interfaces.ErrNotFound)
		})

		t.Run("Delete", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			todo := newTodo(newUserID(), "remove me", 0.3)
			_, err := repo.Todo().Create(ctx, todo)
			gt.NoError(t, err).Required()

			gt.Error(t, repo.Todo().Delete(ctx, newUserID(), todo.ID)).Is(interfaces.ErrNotFound)
			gt.NoError(t, repo.Todo().Delete(ctx, todo.UserID, todo.ID)).Required()

			got, err := repo.Todo().Get(ctx, todo.UserID, todo.ID)
			gt.NoError(t, err)
			gt.Value(t, got).Nil()
		})
	})
}
