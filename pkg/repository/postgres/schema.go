package postgres

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Schema is applied in order by Migrate. Every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL DEFAULT '',
		slack_user_id TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`DROP INDEX IF EXISTS users_slack_user_id_idx`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_slack_user_id_key ON users (slack_user_id) WHERE slack_user_id <> ''`,

	`CREATE TABLE IF NOT EXISTS slack_connections (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		workspace_id   TEXT NOT NULL,
		workspace_name TEXT NOT NULL DEFAULT '',
		team_name      TEXT NOT NULL DEFAULT '',
		access_token   TEXT NOT NULL,
		scope          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, workspace_id)
	)`,

	`CREATE TABLE IF NOT EXISTS slack_webhooks (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		slack_connection_id TEXT NOT NULL,
		webhook_id          TEXT NOT NULL UNIQUE,
		webhook_secret      TEXT NOT NULL,
		is_active           BOOLEAN NOT NULL DEFAULT TRUE,
		last_event_at       TIMESTAMPTZ,
		event_count         BIGINT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, slack_connection_id)
	)`,

	`CREATE TABLE IF NOT EXISTS processed_events (
		id           TEXT PRIMARY KEY,
		event_key    TEXT NOT NULL UNIQUE,
		user_id      TEXT NOT NULL,
		channel_id   TEXT NOT NULL,
		message_ts   TEXT NOT NULL,
		reaction     TEXT NOT NULL,
		todo_id      TEXT NOT NULL,
		processed_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS todos (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		body             TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		deadline         DATE,
		importance_score DOUBLE PRECISION NOT NULL,
		created_via      TEXT NOT NULL,
		completed_at     TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS todos_user_importance_idx ON todos (user_id, importance_score DESC)`,

	`CREATE TABLE IF NOT EXISTS emoji_settings (
		user_id        TEXT PRIMARY KEY,
		today_emoji    TEXT NOT NULL,
		tomorrow_emoji TEXT NOT NULL,
		later_emoji    TEXT NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies Schema
func (p *Postgres) Migrate(ctx context.Context) error {
	for i, stmt := range Schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema", goerr.V("statement", i))
		}
	}
	return nil
}
