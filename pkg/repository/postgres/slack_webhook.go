package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type slackWebhookRepository struct {
	pool *pgxpool.Pool
}

const slackWebhookColumns = `id, user_id, slack_connection_id, webhook_id, webhook_secret, is_active, last_event_at, event_count, created_at, updated_at`

func scanSlackWebhook(row pgx.Row) (*model.SlackWebhook, error) {
	var w model.SlackWebhook
	err := row.Scan(&w.ID, &w.UserID, &w.SlackConnectionID, &w.WebhookID, &w.Secret,
		&w.IsActive, &w.LastEventAt, &w.EventCount, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *slackWebhookRepository) getOne(ctx context.Context, query string, args ...any) (*model.SlackWebhook, error) {
	w, err := scanSlackWebhook(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get slack webhook", goerr.V("args", args))
	}
	return w, nil
}

func (r *slackWebhookRepository) GetByWebhookID(ctx context.Context, webhookID types.WebhookID) (*model.SlackWebhook, error) {
	return r.getOne(ctx, `SELECT `+slackWebhookColumns+` FROM slack_webhooks WHERE webhook_id = $1`, webhookID.String())
}

func (r *slackWebhookRepository) GetByUserAndConnection(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) (*model.SlackWebhook, error) {
	return r.getOne(ctx,
		`SELECT `+slackWebhookColumns+` FROM slack_webhooks WHERE user_id = $1 AND slack_connection_id = $2`,
		userID.String(), connectionID.String())
}

func (r *slackWebhookRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackWebhook, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+slackWebhookColumns+` FROM slack_webhooks WHERE user_id = $1 ORDER BY created_at`, userID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list slack webhooks", goerr.V("user_id", userID))
	}
	defer rows.Close()

	result := make([]*model.SlackWebhook, 0)
	for rows.Next() {
		w, err := scanSlackWebhook(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan slack webhook")
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate slack webhooks")
	}
	return result, nil
}

func (r *slackWebhookRepository) Create(ctx context.Context, webhook *model.SlackWebhook) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO slack_webhooks (`+slackWebhookColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		webhook.ID.String(), webhook.UserID.String(), webhook.SlackConnectionID.String(),
		webhook.WebhookID.String(), webhook.Secret, webhook.IsActive, webhook.LastEventAt,
		webhook.EventCount, webhook.CreatedAt, webhook.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "webhook already exists for connection",
				goerr.V("user_id", webhook.UserID), goerr.V("connection_id", webhook.SlackConnectionID))
		}
		return goerr.Wrap(err, "failed to create slack webhook", goerr.V("webhook_id", webhook.WebhookID))
	}
	return nil
}

func (r *slackWebhookRepository) SetActive(ctx context.Context, webhookID types.WebhookID, active bool, at time.Time) (*model.SlackWebhook, error) {
	w, err := scanSlackWebhook(r.pool.QueryRow(ctx, `
		UPDATE slack_webhooks SET
			is_active = $2,
			updated_at = $3
		WHERE webhook_id = $1
		RETURNING `+slackWebhookColumns,
		webhookID.String(), active, at.UTC(),
	))
	if err != nil {
		if isNoRows(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
		}
		return nil, goerr.Wrap(err, "failed to set webhook active flag", goerr.V("webhook_id", webhookID))
	}
	return w, nil
}

func (r *slackWebhookRepository) RecordEvent(ctx context.Context, webhookID types.WebhookID, at time.Time) (*model.SlackWebhook, error) {
	at = at.UTC()
	w, err := scanSlackWebhook(r.pool.QueryRow(ctx, `
		UPDATE slack_webhooks SET
			event_count = event_count + 1,
			last_event_at = $2,
			updated_at = $2
		WHERE webhook_id = $1
		RETURNING `+slackWebhookColumns,
		webhookID.String(), at,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
		}
		return nil, goerr.Wrap(err, "failed to record webhook event", goerr.V("webhook_id", webhookID))
	}
	return w, nil
}
