package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type slackWebhookRepository struct {
	mu       sync.RWMutex
	webhooks map[types.WebhookID]*model.SlackWebhook
}

func newSlackWebhookRepository() *slackWebhookRepository {
	return &slackWebhookRepository{
		webhooks: make(map[types.WebhookID]*model.SlackWebhook),
	}
}

func copyWebhook(w *model.SlackWebhook) *model.SlackWebhook {
	c := *w
	if w.LastEventAt != nil {
		t := *w.LastEventAt
		c.LastEventAt = &t
	}
	return &c
}

func (r *slackWebhookRepository) GetByWebhookID(ctx context.Context, webhookID types.WebhookID) (*model.SlackWebhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.webhooks[webhookID]
	if !ok {
		return nil, nil
	}
	return copyWebhook(w), nil
}

func (r *slackWebhookRepository) GetByUserAndConnection(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) (*model.SlackWebhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findPair(userID, connectionID), nil
}

// findPair must be called with the lock held
func (r *slackWebhookRepository) findPair(userID types.UserID, connectionID types.SlackConnectionID) *model.SlackWebhook {
	for _, w := range r.webhooks {
		if w.UserID == userID && w.SlackConnectionID == connectionID {
			return copyWebhook(w)
		}
	}
	return nil
}

func (r *slackWebhookRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackWebhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SlackWebhook, 0)
	for _, w := range r.webhooks {
		if w.UserID == userID {
			result = append(result, copyWebhook(w))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *slackWebhookRepository) Create(ctx context.Context, webhook *model.SlackWebhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findPair(webhook.UserID, webhook.SlackConnectionID); existing != nil {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "webhook already exists for connection",
			goerr.V("user_id", webhook.UserID), goerr.V("connection_id", webhook.SlackConnectionID))
	}
	if _, ok := r.webhooks[webhook.WebhookID]; ok {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "webhook ID collision", goerr.V("webhook_id", webhook.WebhookID))
	}

	r.webhooks[webhook.WebhookID] = copyWebhook(webhook)
	return nil
}

func (r *slackWebhookRepository) SetActive(ctx context.Context, webhookID types.WebhookID, active bool, at time.Time) (*model.SlackWebhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.webhooks[webhookID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
	}

	updated := w.WithActive(active, at)
	r.webhooks[webhookID] = &updated
	return copyWebhook(&updated), nil
}

func (r *slackWebhookRepository) RecordEvent(ctx context.Context, webhookID types.WebhookID, at time.Time) (*model.SlackWebhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.webhooks[webhookID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
	}

	updated := w.WithEventRecorded(at)
	r.webhooks[webhookID] = &updated
	return copyWebhook(&updated), nil
}
