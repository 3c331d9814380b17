package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type emojiSettingsRepository struct {
	mu       sync.RWMutex
	settings map[types.UserID]*model.EmojiSettings
}

func newEmojiSettingsRepository() *emojiSettingsRepository {
	return &emojiSettingsRepository{
		settings: make(map[types.UserID]*model.EmojiSettings),
	}
}

func (r *emojiSettingsRepository) Get(ctx context.Context, userID types.UserID) (*model.EmojiSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *emojiSettingsRepository) Put(ctx context.Context, settings *model.EmojiSettings) error {
	if settings == nil || settings.UserID == "" {
		return goerr.New("emoji settings user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := *settings
	r.settings[settings.UserID] = &c
	return nil
}
