package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/service/slack"
	"github.com/secmon-lab/quadrant/pkg/usecase"
)

func TestConnectionUseCase_Connect(t *testing.T) {
	ctx := context.Background()

	grant := func(teamID string) func(ctx context.Context, code, redirectURI string) (*slack.OAuthGrant, error) {
		return func(ctx context.Context, code, redirectURI string) (*slack.OAuthGrant, error) {
			return &slack.OAuthGrant{
				TeamID:        teamID,
				TeamName:      "Acme",
				WorkspaceURL:  "https://acme.slack.com/",
				AccessToken:   "xoxp-new-" + code,
				Scope:         "channels:history,reactions:read",
				AuthedUserID:  "UNEWUSER1",
				IsUserGranted: true,
			}, nil
		}
	}

	t.Run("stores the grant and links the authed slack user", func(t *testing.T) {
		f := newFixture(t)
		f.slack.ExchangeOAuthCodeFn = grant("T0ACME01")
		newcomer := &model.User{ID: "user-new", CreatedAt: testNow}
		gt.NoError(t, f.repo.User().Put(ctx, newcomer)).Required()

		conn, err := f.uc.Connection.Connect(ctx, "user-new", "code1", "https://quadrant.example.com/callback")
		gt.NoError(t, err).Required()
		gt.Value(t, conn.WorkspaceID.String()).Equal("T0ACME01")
		gt.Value(t, conn.AccessToken).Equal("xoxp-new-code1")
		gt.Value(t, conn.TeamName).Equal("Acme")

		user, err := f.repo.User().Get(ctx, "user-new")
		gt.NoError(t, err).Required()
		gt.Value(t, user.SlackUserID.String()).Equal("UNEWUSER1")
	})

	t.Run("reconnecting keeps the connection ID", func(t *testing.T) {
		f := newFixture(t)
		f.slack.ExchangeOAuthCodeFn = grant(testTeamID.String())

		conn, err := f.uc.Connection.Connect(ctx, testOwnerID, "code2", "")
		gt.NoError(t, err).Required()
		gt.Value(t, conn.ID).Equal(f.conn.ID)
		gt.Value(t, conn.AccessToken).Equal("xoxp-new-code2")

		conns, err := f.uc.Connection.List(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Array(t, conns).Length(1)

		// Existing link is not overwritten
		owner, err := f.repo.User().Get(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Value(t, owner.SlackUserID).Equal(testOwnerSlackID)
	})

	t.Run("invalid team ID from slack is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.slack.ExchangeOAuthCodeFn = grant("bogus")

		_, err := f.uc.Connection.Connect(ctx, testOwnerID, "code3", "")
		gt.Error(t, err)
	})

	t.Run("exchange failure is returned", func(t *testing.T) {
		f := newFixture(t)
		f.slack.ExchangeOAuthCodeFn = func(ctx context.Context, code, redirectURI string) (*slack.OAuthGrant, error) {
			return nil, errors.New("invalid_code")
		}

		_, err := f.uc.Connection.Connect(ctx, testOwnerID, "code4", "")
		gt.Error(t, err)
	})

	t.Run("empty code is invalid input", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Connection.Connect(ctx, testOwnerID, "", "")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestConnectionUseCase_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates the webhook and removes the connection", func(t *testing.T) {
		f := newFixture(t)

		gt.NoError(t, f.uc.Connection.Disconnect(ctx, testOwnerID, f.conn.ID)).Required()

		conn, err := f.repo.SlackConnection().Get(ctx, f.conn.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, conn).Nil()

		wh, err := f.repo.SlackWebhook().GetByWebhookID(ctx, f.webhook.WebhookID)
		gt.NoError(t, err).Required()
		gt.Bool(t, wh.IsActive).False()
	})

	t.Run("connection of another user is not found", func(t *testing.T) {
		f := newFixture(t)
		gt.Error(t, f.uc.Connection.Disconnect(ctx, "user-intruder", f.conn.ID)).Is(usecase.ErrConnectionNotFound)
	})
}
