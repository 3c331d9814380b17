package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/usecase"
)

func TestUserUseCase_SetSlackUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("links a slack member to a new user", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.uc.User.SetSlackUserID(ctx, "user-new", "UNEW0001")
		gt.NoError(t, err).Required()
		gt.Value(t, user.SlackUserID.String()).Equal("UNEW0001")

		found, err := f.repo.User().GetBySlackUserID(ctx, "UNEW0001")
		gt.NoError(t, err).Required()
		gt.Value(t, found).NotNil().Required()
		gt.Value(t, found.ID.String()).Equal("user-new")
	})

	t.Run("member linked to another user is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.User.SetSlackUserID(ctx, "user-new", testOwnerSlackID)
		gt.Error(t, err).Is(usecase.ErrSlackUserIDInUse)
	})

	t.Run("malformed member ID is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.User.SetSlackUserID(ctx, testOwnerID, "not-a-slack-id")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("empty ID unlinks", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.uc.User.SetSlackUserID(ctx, testOwnerID, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, user.HasSlackUserID()).False()
	})
}

func TestUserUseCase_EnsureUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.uc.User.EnsureUser(ctx, "user-fresh", "fresh@example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, created.Email).Equal("fresh@example.com")

	updated, err := f.uc.User.EnsureUser(ctx, "user-fresh", "renamed@example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Email).Equal("renamed@example.com")
	gt.Value(t, updated.CreatedAt).Equal(created.CreatedAt)

	_, err = f.uc.User.EnsureUser(ctx, "", "")
	gt.Error(t, err).Is(usecase.ErrInvalidInput)
}

// staleLookupRepo answers every Slack user lookup with nil, as if another
// request linked the member right after the lookup ran
type staleLookupRepo struct {
	interfaces.Repository
}

func (r *staleLookupRepo) User() interfaces.UserRepository {
	return &staleLookupUsers{UserRepository: r.Repository.User()}
}

type staleLookupUsers struct {
	interfaces.UserRepository
}

func (r *staleLookupUsers) GetBySlackUserID(ctx context.Context, slackUserID types.SlackUserID) (*model.User, error) {
	return nil, nil
}

func TestUserUseCase_SetSlackUserIDConflictOnWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := usecase.New(&staleLookupRepo{Repository: f.repo}, usecase.WithClock(func() time.Time { return testNow }))

	_, err := uc.User.SetSlackUserID(ctx, "user-late", testOwnerSlackID)
	gt.Error(t, err).Is(usecase.ErrSlackUserIDInUse)

	owner, err := f.repo.User().GetBySlackUserID(ctx, testOwnerSlackID)
	gt.NoError(t, err).Required()
	gt.Value(t, owner).NotNil().Required()
	gt.Value(t, owner.ID).Equal(testOwnerID)

	late, err := f.repo.User().Get(ctx, "user-late")
	gt.NoError(t, err).Required()
	gt.Bool(t, late == nil || !late.HasSlackUserID()).True()
}
