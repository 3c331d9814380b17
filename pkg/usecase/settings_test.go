package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/usecase"
)

func TestEmojiSettingsUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when unset", func(t *testing.T) {
		f := newFixture(t)

		settings, err := f.uc.EmojiSettings.Get(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Value(t, settings.UserID).Equal(testOwnerID)
		gt.Value(t, settings.TodayEmoji).Equal("memo")
		gt.Value(t, settings.TomorrowEmoji).Equal("calendar")
		gt.Value(t, settings.LaterEmoji).Equal("fire")
	})

	t.Run("configured defaults are used", func(t *testing.T) {
		f := newFixture(t, usecase.WithDefaultEmoji(model.EmojiSettings{
			TodayEmoji:    ":zap:",
			TomorrowEmoji: "soon",
			LaterEmoji:    "snail",
		}))

		settings, err := f.uc.EmojiSettings.Get(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Value(t, settings.TodayEmoji).Equal("zap")
	})

	t.Run("put normalizes names", func(t *testing.T) {
		f := newFixture(t)

		saved, err := f.uc.EmojiSettings.Put(ctx, testOwnerID, ":rocket:", " hourglass ", "turtle")
		gt.NoError(t, err).Required()
		gt.Value(t, saved.TodayEmoji).Equal("rocket")
		gt.Value(t, saved.TomorrowEmoji).Equal("hourglass")

		got, err := f.uc.EmojiSettings.Get(ctx, testOwnerID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.TodayEmoji).Equal("rocket")
		gt.Value(t, got.LaterEmoji).Equal("turtle")
	})

	t.Run("duplicate emoji are rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.EmojiSettings.Put(ctx, testOwnerID, "rocket", ":rocket:", "turtle")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("empty emoji is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.EmojiSettings.Put(ctx, testOwnerID, "rocket", "", "turtle")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}
