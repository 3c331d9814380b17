package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/service/slack"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

type ConnectionUseCase struct {
	repo     interfaces.Repository
	slack    slack.Service
	webhooks *WebhookUseCase
	clock    func() time.Time
}

func NewConnectionUseCase(repo interfaces.Repository, slackService slack.Service, webhooks *WebhookUseCase, clock func() time.Time) *ConnectionUseCase {
	return &ConnectionUseCase{
		repo:     repo,
		slack:    slackService,
		webhooks: webhooks,
		clock:    clock,
	}
}

// Connect completes Slack's OAuth flow for userID. A second grant for the
// same workspace replaces the stored token and keeps the connection ID, so
// the pair's webhook stays attached.
func (uc *ConnectionUseCase) Connect(ctx context.Context, userID types.UserID, code, redirectURI string) (*model.SlackConnection, error) {
	if uc.slack == nil {
		return nil, goerr.Wrap(ErrSlackNotConfigured, "cannot exchange oauth code")
	}
	if code == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "oauth code is required")
	}

	grant, err := uc.slack.ExchangeOAuthCode(ctx, code, redirectURI)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange slack oauth code", goerr.V(UserIDKey, userID))
	}

	workspaceID := types.SlackTeamID(grant.TeamID)
	if err := workspaceID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "slack returned an invalid team ID", goerr.V("team_id", grant.TeamID))
	}

	existing, err := uc.repo.SlackConnection().GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up slack connection", goerr.V("workspace_id", workspaceID))
	}

	conn := &model.SlackConnection{
		ID:            types.NewSlackConnectionID(),
		UserID:        userID,
		WorkspaceID:   workspaceID,
		WorkspaceName: grant.WorkspaceURL,
		TeamName:      grant.TeamName,
		AccessToken:   grant.AccessToken,
		Scope:         grant.Scope,
		CreatedAt:     uc.clock().UTC(),
	}
	if existing != nil {
		conn.ID = existing.ID
		conn.CreatedAt = existing.CreatedAt
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.SlackConnection().Put(ctx, conn); err != nil {
		return nil, goerr.Wrap(err, "failed to save slack connection", goerr.V(ConnectionIDKey, conn.ID))
	}

	if grant.AuthedUserID != "" {
		uc.linkAuthedUser(ctx, userID, types.SlackUserID(grant.AuthedUserID))
	}

	logging.From(ctx).Info("slack workspace connected",
		"user_id", userID,
		"connection_id", conn.ID,
		"workspace_id", workspaceID,
		"reconnected", existing != nil,
	)
	return conn, nil
}

// linkAuthedUser records the Slack member that approved the grant when the
// user has not linked one yet. Failures leave the user to set it manually.
func (uc *ConnectionUseCase) linkAuthedUser(ctx context.Context, userID types.UserID, slackUserID types.SlackUserID) {
	logger := logging.From(ctx)

	user, err := uc.repo.User().Get(ctx, userID)
	if err != nil {
		logger.Warn("failed to load user for slack link", "error", err, "user_id", userID)
		return
	}
	if user.HasSlackUserID() || slackUserID.Validate() != nil {
		return
	}

	other, err := uc.repo.User().GetBySlackUserID(ctx, slackUserID)
	if err != nil {
		logger.Warn("failed to look up slack user", "error", err, "slack_user_id", slackUserID)
		return
	}
	if other != nil && other.ID != userID {
		logger.Info("slack user already linked to another user", "slack_user_id", slackUserID, "user_id", userID)
		return
	}

	now := uc.clock().UTC()
	if user == nil {
		user = &model.User{ID: userID, CreatedAt: now}
	}
	user.SlackUserID = slackUserID
	user.UpdatedAt = now
	if err := uc.repo.User().Put(ctx, user); err != nil {
		logger.Warn("failed to link slack user", "error", err, "user_id", userID)
	}
}

// Disconnect deactivates the connection's webhook and removes the grant
func (uc *ConnectionUseCase) Disconnect(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) error {
	conn, err := uc.repo.SlackConnection().Get(ctx, connectionID)
	if err != nil {
		return goerr.Wrap(err, "failed to get slack connection", goerr.V(ConnectionIDKey, connectionID))
	}
	if conn == nil || !conn.OwnedBy(userID) {
		return goerr.Wrap(ErrConnectionNotFound, "connection not found for user",
			goerr.V(ConnectionIDKey, connectionID), goerr.V(UserIDKey, userID))
	}

	if err := uc.webhooks.deactivateForConnection(ctx, userID, connectionID); err != nil {
		return err
	}

	if err := uc.repo.SlackConnection().Delete(ctx, connectionID); err != nil {
		return goerr.Wrap(err, "failed to delete slack connection", goerr.V(ConnectionIDKey, connectionID))
	}

	logging.From(ctx).Info("slack workspace disconnected", "user_id", userID, "connection_id", connectionID)
	return nil
}

func (uc *ConnectionUseCase) List(ctx context.Context, userID types.UserID) ([]*model.SlackConnection, error) {
	conns, err := uc.repo.SlackConnection().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list slack connections", goerr.V(UserIDKey, userID))
	}
	return conns, nil
}
