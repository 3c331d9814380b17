package interfaces

import (
	"context"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// UserRepository stores application users and their Slack member link
type UserRepository interface {
	Get(ctx context.Context, id types.UserID) (*model.User, error)

	// GetBySlackUserID resolves a Slack member to the user that linked it
	GetBySlackUserID(ctx context.Context, slackUserID types.SlackUserID) (*model.User, error)

	// Put creates or replaces the user. It returns ErrAlreadyExists when the
	// Slack user ID is linked to another user.
	Put(ctx context.Context, user *model.User) error
}
