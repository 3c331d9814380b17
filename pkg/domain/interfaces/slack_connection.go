package interfaces

import (
	"context"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// SlackConnectionRepository stores Slack OAuth grants
type SlackConnectionRepository interface {
	Get(ctx context.Context, id types.SlackConnectionID) (*model.SlackConnection, error)

	// GetByUserAndWorkspace returns the grant of userID for a workspace
	GetByUserAndWorkspace(ctx context.Context, userID types.UserID, workspaceID types.SlackTeamID) (*model.SlackConnection, error)

	// ListByUser returns the user's grants ordered by creation time
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackConnection, error)

	// Put creates or replaces the connection
	Put(ctx context.Context, conn *model.SlackConnection) error

	// Delete removes the connection. Deleting a missing connection is not an error.
	Delete(ctx context.Context, id types.SlackConnectionID) error
}
