package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

func TestEmojiSettingsRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		got, err := repo.EmojiSettings().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()

		settings := &model.EmojiSettings{
			UserID:        userID,
			TodayEmoji:    "rotating_light",
			TomorrowEmoji: "soon",
			LaterEmoji:    "turtle",
			UpdatedAt:     now(),
		}
		gt.NoError(t, repo.EmojiSettings().Put(ctx, settings)).Required()

		got, err = repo.EmojiSettings().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil().Required()
		gt.Value(t, got.TodayEmoji).Equal("rotating_light")
		gt.Value(t, got.TomorrowEmoji).Equal("soon")
		gt.Value(t, got.LaterEmoji).Equal("turtle")

		settings.LaterEmoji = "snail"
		gt.NoError(t, repo.EmojiSettings().Put(ctx, settings)).Required()
		got, err = repo.EmojiSettings().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.LaterEmoji).Equal("snail")
	})
}
