package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type userRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, slack_user_id, created_at, updated_at`

func (r *userRepository) get(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` LIMIT 1`, arg).
		Scan(&u.ID, &u.Email, &u.SlackUserID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("arg", arg))
	}
	return &u, nil
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	return r.get(ctx, "id = $1", id.String())
}

func (r *userRepository) GetBySlackUserID(ctx context.Context, slackUserID types.SlackUserID) (*model.User, error) {
	if slackUserID == "" {
		return nil, nil
	}
	return r.get(ctx, "slack_user_id = $1", slackUserID.String())
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if user == nil || user.ID == "" {
		return goerr.New("user ID is required")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, slack_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			slack_user_id = EXCLUDED.slack_user_id,
			updated_at = EXCLUDED.updated_at`,
		user.ID.String(), user.Email, user.SlackUserID.String(), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "slack user ID is linked to another user",
				goerr.V("user_id", user.ID), goerr.V("slack_user_id", user.SlackUserID))
		}
		return goerr.Wrap(err, "failed to put user", goerr.V("user_id", user.ID))
	}
	return nil
}
