package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// SlackConnection is one OAuth grant of a user to a Slack workspace
type SlackConnection struct {
	ID            types.SlackConnectionID
	UserID        types.UserID
	WorkspaceID   types.SlackTeamID
	WorkspaceName string
	TeamName      string
	AccessToken   string `masq:"secret"`
	Scope         string
	CreatedAt     time.Time
}

// Validate checks required fields and the workspace ID format
func (c *SlackConnection) Validate() error {
	if c.ID == "" {
		return goerr.New("connection ID is required")
	}
	if c.UserID == "" {
		return goerr.New("connection user ID is required", goerr.V("connection_id", c.ID))
	}
	if err := c.WorkspaceID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace ID", goerr.V("connection_id", c.ID))
	}
	if c.AccessToken == "" {
		return goerr.New("connection access token is required", goerr.V("connection_id", c.ID))
	}
	return nil
}

// OwnedBy reports whether the connection belongs to userID
func (c *SlackConnection) OwnedBy(userID types.UserID) bool {
	return c != nil && c.UserID == userID
}
