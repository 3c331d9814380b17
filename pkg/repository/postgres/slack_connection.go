package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type slackConnectionRepository struct {
	pool *pgxpool.Pool
}

const slackConnectionColumns = `id, user_id, workspace_id, workspace_name, team_name, access_token, scope, created_at`

func scanSlackConnection(row pgx.Row) (*model.SlackConnection, error) {
	var c model.SlackConnection
	if err := row.Scan(&c.ID, &c.UserID, &c.WorkspaceID, &c.WorkspaceName, &c.TeamName, &c.AccessToken, &c.Scope, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *slackConnectionRepository) Get(ctx context.Context, id types.SlackConnectionID) (*model.SlackConnection, error) {
	c, err := scanSlackConnection(r.pool.QueryRow(ctx,
		`SELECT `+slackConnectionColumns+` FROM slack_connections WHERE id = $1`, id.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get slack connection", goerr.V("connection_id", id))
	}
	return c, nil
}

func (r *slackConnectionRepository) GetByUserAndWorkspace(ctx context.Context, userID types.UserID, workspaceID types.SlackTeamID) (*model.SlackConnection, error) {
	c, err := scanSlackConnection(r.pool.QueryRow(ctx,
		`SELECT `+slackConnectionColumns+` FROM slack_connections WHERE user_id = $1 AND workspace_id = $2`,
		userID.String(), workspaceID.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get slack connection",
			goerr.V("user_id", userID), goerr.V("workspace_id", workspaceID))
	}
	return c, nil
}

func (r *slackConnectionRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackConnection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+slackConnectionColumns+` FROM slack_connections WHERE user_id = $1 ORDER BY created_at`, userID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list slack connections", goerr.V("user_id", userID))
	}
	defer rows.Close()

	result := make([]*model.SlackConnection, 0)
	for rows.Next() {
		c, err := scanSlackConnection(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan slack connection")
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate slack connections")
	}
	return result, nil
}

func (r *slackConnectionRepository) Put(ctx context.Context, conn *model.SlackConnection) error {
	if err := conn.Validate(); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO slack_connections (`+slackConnectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			workspace_name = EXCLUDED.workspace_name,
			team_name = EXCLUDED.team_name,
			access_token = EXCLUDED.access_token,
			scope = EXCLUDED.scope`,
		conn.ID.String(), conn.UserID.String(), conn.WorkspaceID.String(), conn.WorkspaceName,
		conn.TeamName, conn.AccessToken, conn.Scope, conn.CreatedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put slack connection", goerr.V("connection_id", conn.ID))
	}
	return nil
}

func (r *slackConnectionRepository) Delete(ctx context.Context, id types.SlackConnectionID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM slack_connections WHERE id = $1`, id.String()); err != nil {
		return goerr.Wrap(err, "failed to delete slack connection", goerr.V("connection_id", id))
	}
	return nil
}
