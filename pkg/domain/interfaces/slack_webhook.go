package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// SlackWebhookRepository stores webhook identities. At most one webhook exists
// per (user, connection) pair.
type SlackWebhookRepository interface {
	// GetByWebhookID looks a webhook up by its public identifier
	GetByWebhookID(ctx context.Context, webhookID types.WebhookID) (*model.SlackWebhook, error)

	// GetByUserAndConnection returns the webhook of the pair, active or not
	GetByUserAndConnection(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) (*model.SlackWebhook, error)

	ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackWebhook, error)

	// Create inserts a new webhook. It returns ErrAlreadyExists when the pair
	// already has a webhook.
	Create(ctx context.Context, webhook *model.SlackWebhook) error

	// SetActive changes only IsActive and UpdatedAt, leaving the event
	// counters untouched, and returns the stored webhook. It returns
	// ErrNotFound when missing.
	SetActive(ctx context.Context, webhookID types.WebhookID, active bool, at time.Time) (*model.SlackWebhook, error)

	// RecordEvent atomically increments EventCount and advances LastEventAt
	RecordEvent(ctx context.Context, webhookID types.WebhookID, at time.Time) (*model.SlackWebhook, error)
}
