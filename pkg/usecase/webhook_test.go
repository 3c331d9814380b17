package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/usecase"
)

func TestWebhookUseCase_CreateOrReactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active webhook with a URL", func(t *testing.T) {
		f := newFixture(t)

		gt.Bool(t, f.webhook.IsActive).True()
		gt.Number(t, len(f.webhook.Secret)).Equal(64)

		list, err := f.uc.Webhook.List(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].URL).Equal("https://quadrant.example.com/webhooks/slack/events/" + f.webhook.WebhookID.String())
		gt.Bool(t, strings.Contains(list[0].URL, f.webhook.Secret)).False()
	})

	t.Run("second call returns the same active webhook", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.uc.Webhook.CreateOrReactivate(ctx, testOwnerID, f.conn.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.WebhookAlreadyActive)
		gt.Value(t, result.Webhook.WebhookID).Equal(f.webhook.WebhookID)
	})

	t.Run("reactivation keeps identity and secret", func(t *testing.T) {
		f := newFixture(t)
		gt.NoError(t, f.uc.Webhook.Deactivate(ctx, f.webhook.WebhookID, testOwnerID)).Required()

		stored, err := f.repo.SlackWebhook().GetByWebhookID(ctx, f.webhook.WebhookID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.IsActive).False()

		result, err := f.uc.Webhook.CreateOrReactivate(ctx, testOwnerID, f.conn.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.WebhookReactivated)
		gt.Value(t, result.Webhook.WebhookID).Equal(f.webhook.WebhookID)
		gt.Value(t, result.Webhook.Secret).Equal(f.webhook.Secret)
		gt.Bool(t, result.Webhook.IsActive).True()

		list, err := f.uc.Webhook.List(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
	})

	t.Run("concurrent calls leave a single webhook", func(t *testing.T) {
		f := newFixture(t)
		conn := &model.SlackConnection{
			ID:          types.NewSlackConnectionID(),
			UserID:      testOwnerID,
			WorkspaceID: "T0OTHER1",
			AccessToken: "xoxp-other",
			CreatedAt:   testNow,
		}
		gt.NoError(t, f.repo.SlackConnection().Put(ctx, conn)).Required()

		var wg sync.WaitGroup
		ids := make([]types.WebhookID, 10)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				result, err := f.uc.Webhook.CreateOrReactivate(ctx, testOwnerID, conn.ID)
				gt.NoError(t, err)
				if result != nil {
					ids[i] = result.Webhook.WebhookID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			gt.Value(t, id).Equal(ids[0])
		}
		list, err := f.uc.Webhook.List(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
	})

	t.Run("connection of another user is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Webhook.CreateOrReactivate(ctx, "user-intruder", f.conn.ID)
		gt.Error(t, err).Is(usecase.ErrConnectionNotFound)
	})

	t.Run("unknown connection is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Webhook.CreateOrReactivate(ctx, testOwnerID, "missing")
		gt.Error(t, err).Is(usecase.ErrConnectionNotFound)
	})
}

func TestWebhookUseCase_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown webhook", func(t *testing.T) {
		f := newFixture(t)
		gt.Error(t, f.uc.Webhook.Deactivate(ctx, "missing", testOwnerID)).Is(usecase.ErrWebhookNotFound)
	})

	t.Run("webhook of another user", func(t *testing.T) {
		f := newFixture(t)
		gt.Error(t, f.uc.Webhook.Deactivate(ctx, f.webhook.WebhookID, "user-intruder")).Is(usecase.ErrAccessDenied)

		stored, err := f.repo.SlackWebhook().GetByWebhookID(ctx, f.webhook.WebhookID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.IsActive).True()
	})

	t.Run("deactivating twice is a no-op", func(t *testing.T) {
		f := newFixture(t)
		gt.NoError(t, f.uc.Webhook.Deactivate(ctx, f.webhook.WebhookID, testOwnerID)).Required()
		gt.NoError(t, f.uc.Webhook.Deactivate(ctx, f.webhook.WebhookID, testOwnerID)).Required()
	})
}

// eventDuringReadRepo records one webhook event right after the first
// GetByWebhookID, as a reaction processed concurrently would
type eventDuringReadRepo struct {
	interfaces.Repository
	webhooks *eventDuringReadWebhooks
}

func (r *eventDuringReadRepo) SlackWebhook() interfaces.SlackWebhookRepository {
	return r.webhooks
}

type eventDuringReadWebhooks struct {
	interfaces.SlackWebhookRepository
	once sync.Once
	at   time.Time
}

func (r *eventDuringReadWebhooks) GetByWebhookID(ctx context.Context, webhookID types.WebhookID) (*model.SlackWebhook, error) {
	w, err := r.SlackWebhookRepository.GetByWebhookID(ctx, webhookID)
	if err != nil || w == nil {
		return w, err
	}
	r.once.Do(func() {
		_, err = r.SlackWebhookRepository.RecordEvent(ctx, webhookID, r.at)
	})
	return w, err
}

func TestWebhookUseCase_DeactivateKeepsConcurrentEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	repo := &eventDuringReadRepo{
		Repository: f.repo,
		webhooks: &eventDuringReadWebhooks{
			SlackWebhookRepository: f.repo.SlackWebhook(),
			at:                     testNow.Add(time.Minute),
		},
	}
	uc := usecase.New(repo, usecase.WithClock(func() time.Time { return testNow.Add(2 * time.Minute) }))

	gt.NoError(t, uc.Webhook.Deactivate(ctx, f.webhook.WebhookID, testOwnerID)).Required()

	stored, err := f.repo.SlackWebhook().GetByWebhookID(ctx, f.webhook.WebhookID)
	gt.NoError(t, err).Required()
	gt.Bool(t, stored.IsActive).False()
	gt.Number(t, stored.EventCount).Equal(1)
	gt.Value(t, stored.LastEventAt).NotNil().Required()
	gt.B(t, stored.LastEventAt.Equal(testNow.Add(time.Minute))).True()
}
