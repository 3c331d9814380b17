package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type EmojiSettingsUseCase struct {
	repo     interfaces.Repository
	defaults model.EmojiSettings
	clock    func() time.Time
}

func NewEmojiSettingsUseCase(repo interfaces.Repository, defaults model.EmojiSettings, clock func() time.Time) *EmojiSettingsUseCase {
	return &EmojiSettingsUseCase{
		repo:     repo,
		defaults: defaults,
		clock:    clock,
	}
}

// Get returns the user's mapping, or the defaults when none is stored
func (uc *EmojiSettingsUseCase) Get(ctx context.Context, userID types.UserID) (*model.EmojiSettings, error) {
	settings, err := uc.repo.EmojiSettings().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get emoji settings", goerr.V(UserIDKey, userID))
	}
	if settings == nil {
		d := uc.defaults
		d.UserID = userID
		return &d, nil
	}
	return settings, nil
}

// Put validates and stores the user's mapping with emoji names normalized
func (uc *EmojiSettingsUseCase) Put(ctx context.Context, userID types.UserID, today, tomorrow, later string) (*model.EmojiSettings, error) {
	settings := model.EmojiSettings{
		UserID:        userID,
		TodayEmoji:    today,
		TomorrowEmoji: tomorrow,
		LaterEmoji:    later,
		UpdatedAt:     uc.clock().UTC(),
	}.Normalized()

	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(UserIDKey, userID))
	}

	if err := uc.repo.EmojiSettings().Put(ctx, &settings); err != nil {
		return nil, goerr.Wrap(err, "failed to save emoji settings", goerr.V(UserIDKey, userID))
	}
	return &settings, nil
}
