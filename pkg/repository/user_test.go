package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

func TestUserRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("Put and Get", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			ts := now()

			user := &model.User{
				ID:          newUserID(),
				Email:       "alice@example.com",
				SlackUserID: newSlackUserID(),
				CreatedAt:   ts,
				UpdatedAt:   ts,
			}
			gt.NoError(t, repo.User().Put(ctx, user)).Required()

			got, err := repo.User().Get(ctx, user.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got).NotNil()
			gt.Value(t, got.Email).Equal(user.Email)
			gt.Value(t, got.SlackUserID).Equal(user.SlackUserID)
			gt.B(t, got.CreatedAt.Equal(ts)).True()
		})

		t.Run("Get missing user returns nil", func(t *testing.T) {
			repo := newRepo(t)
			got, err := repo.User().Get(context.Background(), newUserID())
			gt.NoError(t, err)
			gt.Value(t, got).Nil()
		})

		t.Run("GetBySlackUserID", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			ts := now()

			user := &model.User{ID: newUserID(), SlackUserID: newSlackUserID(), CreatedAt: ts, UpdatedAt: ts}
			gt.NoError(t, repo.User().Put(ctx, user)).Required()

			got, err := repo.User().GetBySlackUserID(ctx, user.SlackUserID)
			gt.NoError(t, err).Required()
			gt.Value(t, got).NotNil()
			gt.Value(t, got.ID).Equal(user.ID)

			missing, err := repo.User().GetBySlackUserID(ctx, newSlackUserID())
			gt.NoError(t, err)
			gt.Value(t, missing).Nil()

			empty, err := repo.User().GetBySlackUserID(ctx, "")
			gt.NoError(t, err)
			gt.Value(t, empty).Nil()
		})

		t.Run("Put overwrites", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			ts := now()

			user := &model.User{ID: newUserID(), CreatedAt: ts, UpdatedAt: ts}
			gt.NoError(t, repo.User().Put(ctx, user)).Required()

			user.SlackUserID = newSlackUserID()
			gt.NoError(t, repo.User().Put(ctx, user)).Required()

			got, err := repo.User().Get(ctx, user.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got.SlackUserID).Equal(user.SlackUserID)
		})

		t.Run("Put rejects a Slack user ID linked to another user", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			ts := now()
			slackUserID := newSlackUserID()

			first := &model.User{ID: newUserID(), SlackUserID: slackUserID, CreatedAt: ts, UpdatedAt: ts}
			gt.NoError(t, repo.User().Put(ctx, first)).Required()

			second := &model.User{ID: newUserID(), SlackUserID: slackUserID, CreatedAt: ts, UpdatedAt: ts}
			gt.Error(t, repo.User().Put(ctx, second)).Is(interfaces.ErrAlreadyExists)

			got, err := repo.User().GetBySlackUserID(ctx, slackUserID)
			gt.NoError(t, err).Required()
			gt.Value(t, got).NotNil().Required()
			gt.Value(t, got.ID).Equal(first.ID)

			// users without a Slack link never conflict
			a := &model.User{ID: newUserID(), CreatedAt: ts, UpdatedAt: ts}
			b := &model.User{ID: newUserID(), CreatedAt: ts, UpdatedAt: ts}
			gt.NoError(t, repo.User().Put(ctx, a)).Required()
			gt.NoError(t, repo.User().Put(ctx, b)).Required()
		})

		t.Run("Put releases the previous Slack user ID", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			ts := now()
			oldID := newSlackUserID()

			first := &model.User{ID: newUserID(), SlackUserID: oldID, CreatedAt: ts, UpdatedAt: ts}
			gt.NoError(t, repo.User().Put(ctx, first)).Required()

			first.SlackUserID = newSlackUserID()
			gt.NoError(t, repo.User().Put(ctx, first)).Required()

			second := &model.User{ID: newUserID(), SlackUserID: oldID, CreatedAt: ts, UpdatedAt: ts}
			gt.NoError(t, repo.User().Put(ctx, second)).Required()

			got, err := repo.User().GetBySlackUserID(ctx, oldID)
			gt.NoError(t, err).Required()
			gt.Value(t, got).NotNil().Required()
			gt.Value(t, got.ID).Equal(second.ID)
		})
	})
}
