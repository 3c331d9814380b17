package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

// WebhookOutcome tells what CreateOrReactivate did
type WebhookOutcome string

const (
	WebhookCreated       WebhookOutcome = "created"
	WebhookReactivated   WebhookOutcome = "reactivated"
	WebhookAlreadyActive WebhookOutcome = "already_active"
)

// WebhookResult is a webhook with its public URL
type WebhookResult struct {
	Webhook *model.SlackWebhook
	URL     string
	Outcome WebhookOutcome
}

type WebhookUseCase struct {
	repo    interfaces.Repository
	baseURL string
	clock   func() time.Time
}

func NewWebhookUseCase(repo interfaces.Repository, baseURL string, clock func() time.Time) *WebhookUseCase {
	return &WebhookUseCase{
		repo:    repo,
		baseURL: baseURL,
		clock:   clock,
	}
}

// CreateOrReactivate returns the single webhook of (userID, connectionID),
// creating it when absent and reactivating it when disabled. A reactivated
// webhook keeps its WebhookID and secret, so the URL configured in Slack
// keeps working.
func (uc *WebhookUseCase) CreateOrReactivate(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) (*WebhookResult, error) {
	conn, err := uc.repo.SlackConnection().Get(ctx, connectionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get slack connection", goerr.V(ConnectionIDKey, connectionID))
	}
	if conn == nil || !conn.OwnedBy(userID) {
		return nil, goerr.Wrap(ErrConnectionNotFound, "connection not found for user",
			goerr.V(ConnectionIDKey, connectionID), goerr.V(UserIDKey, userID))
	}

	existing, err := uc.repo.SlackWebhook().GetByUserAndConnection(ctx, userID, connectionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up webhook", goerr.V(ConnectionIDKey, connectionID))
	}
	if existing != nil {
		return uc.reactivate(ctx, existing)
	}

	webhook, err := model.NewSlackWebhook(userID, connectionID, uc.clock())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SlackWebhook().Create(ctx, webhook); err != nil {
		if !errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(err, "failed to create webhook", goerr.V(ConnectionIDKey, connectionID))
		}

		// A concurrent request created the pair's webhook first
		existing, err := uc.repo.SlackWebhook().GetByUserAndConnection(ctx, userID, connectionID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up webhook", goerr.V(ConnectionIDKey, connectionID))
		}
		if existing == nil {
			return nil, goerr.New("webhook vanished after conflict", goerr.V(ConnectionIDKey, connectionID))
		}
		return uc.reactivate(ctx, existing)
	}

	logging.From(ctx).Info("webhook created",
		"user_id", userID,
		"connection_id", connectionID,
		"webhook_id", webhook.WebhookID,
	)
	return uc.result(webhook, WebhookCreated), nil
}

func (uc *WebhookUseCase) reactivate(ctx context.Context, webhook *model.SlackWebhook) (*WebhookResult, error) {
	if webhook.IsActive {
		return uc.result(webhook, WebhookAlreadyActive), nil
	}

	updated, err := uc.repo.SlackWebhook().SetActive(ctx, webhook.WebhookID, true, uc.clock())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reactivate webhook", goerr.V(WebhookIDKey, webhook.WebhookID))
	}

	logging.From(ctx).Info("webhook reactivated", "webhook_id", updated.WebhookID, "user_id", updated.UserID)
	return uc.result(updated, WebhookReactivated), nil
}

// Deactivate disables the webhook. Inbound events to a disabled webhook are
// answered with not found. Deactivating an inactive webhook is a no-op.
func (uc *WebhookUseCase) Deactivate(ctx context.Context, webhookID types.WebhookID, userID types.UserID) error {
	webhook, err := uc.repo.SlackWebhook().GetByWebhookID(ctx, webhookID)
	if err != nil {
		return goerr.Wrap(err, "failed to get webhook", goerr.V(WebhookIDKey, webhookID))
	}
	if webhook == nil {
		return goerr.Wrap(ErrWebhookNotFound, "webhook not found", goerr.V(WebhookIDKey, webhookID))
	}
	if !webhook.OwnedBy(userID) {
		return goerr.Wrap(ErrAccessDenied, "webhook belongs to another user",
			goerr.V(WebhookIDKey, webhookID), goerr.V(UserIDKey, userID))
	}
	if !webhook.IsActive {
		return nil
	}

	if _, err := uc.repo.SlackWebhook().SetActive(ctx, webhookID, false, uc.clock()); err != nil {
		return goerr.Wrap(err, "failed to deactivate webhook", goerr.V(WebhookIDKey, webhookID))
	}

	logging.From(ctx).Info("webhook deactivated", "webhook_id", webhookID, "user_id", userID)
	return nil
}

// List returns every webhook of the user, active or not
func (uc *WebhookUseCase) List(ctx context.Context, userID types.UserID) ([]*WebhookResult, error) {
	webhooks, err := uc.repo.SlackWebhook().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list webhooks", goerr.V(UserIDKey, userID))
	}

	results := make([]*WebhookResult, 0, len(webhooks))
	for _, w := range webhooks {
		results = append(results, uc.result(w, ""))
	}
	return results, nil
}

// deactivateForConnection disables the webhook of the pair, if any
func (uc *WebhookUseCase) deactivateForConnection(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) error {
	webhook, err := uc.repo.SlackWebhook().GetByUserAndConnection(ctx, userID, connectionID)
	if err != nil {
		return goerr.Wrap(err, "failed to look up webhook", goerr.V(ConnectionIDKey, connectionID))
	}
	if webhook == nil {
		return nil
	}
	return uc.Deactivate(ctx, webhook.WebhookID, userID)
}

func (uc *WebhookUseCase) result(webhook *model.SlackWebhook, outcome WebhookOutcome) *WebhookResult {
	return &WebhookResult{
		Webhook: webhook,
		URL:     webhook.URL(uc.baseURL),
		Outcome: outcome,
	}
}
