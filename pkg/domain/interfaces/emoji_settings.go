package interfaces

import (
	"context"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// EmojiSettingsRepository stores per-user emoji to urgency mappings
type EmojiSettingsRepository interface {
	// Get returns nil when the user has not configured a mapping
	Get(ctx context.Context, userID types.UserID) (*model.EmojiSettings, error)

	Put(ctx context.Context, settings *model.EmojiSettings) error
}
