package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
)

const uniqueViolation = "23505"

type Postgres struct {
	pool            *pgxpool.Pool
	user            *userRepository
	slackConnection *slackConnectionRepository
	slackWebhook    *slackWebhookRepository
	processedEvent  *processedEventRepository
	todo            *todoRepository
	emojiSettings   *emojiSettingsRepository
}

var _ interfaces.Repository = &Postgres{}

// New connects to databaseURL and verifies the connection. Call Migrate to
// create the schema.
func New(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	return &Postgres{
		pool:            pool,
		user:            &userRepository{pool: pool},
		slackConnection: &slackConnectionRepository{pool: pool},
		slackWebhook:    &slackWebhookRepository{pool: pool},
		processedEvent:  &processedEventRepository{pool: pool},
		todo:            &todoRepository{pool: pool},
		emojiSettings:   &emojiSettingsRepository{pool: pool},
	}, nil
}

func (p *Postgres) User() interfaces.UserRepository {
	return p.user
}

func (p *Postgres) SlackConnection() interfaces.SlackConnectionRepository {
	return p.slackConnection
}

func (p *Postgres) SlackWebhook() interfaces.SlackWebhookRepository {
	return p.slackWebhook
}

func (p *Postgres) ProcessedEvent() interfaces.ProcessedEventRepository {
	return p.processedEvent
}

func (p *Postgres) Todo() interfaces.TodoRepository {
	return p.todo
}

func (p *Postgres) EmojiSettings() interfaces.EmojiSettingsRepository {
	return p.emojiSettings
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
