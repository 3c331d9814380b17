package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type emojiSettingsRepository struct {
	pool *pgxpool.Pool
}

func (r *emojiSettingsRepository) Get(ctx context.Context, userID types.UserID) (*model.EmojiSettings, error) {
	var s model.EmojiSettings
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, today_emoji, tomorrow_emoji, later_emoji, updated_at
		FROM emoji_settings WHERE user_id = $1`, userID.String(),
	).Scan(&s.UserID, &s.TodayEmoji, &s.TomorrowEmoji, &s.LaterEmoji, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get emoji settings", goerr.V("user_id", userID))
	}
	return &s, nil
}

func (r *emojiSettingsRepository) Put(ctx context.Context, settings *model.EmojiSettings) error {
	if settings == nil || settings.UserID == "" {
		return goerr.New("emoji settings user ID is required")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO emoji_settings (user_id, today_emoji, tomorrow_emoji, later_emoji, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			today_emoji = EXCLUDED.today_emoji,
			tomorrow_emoji = EXCLUDED.tomorrow_emoji,
			later_emoji = EXCLUDED.later_emoji,
			updated_at = EXCLUDED.updated_at`,
		settings.UserID.String(), settings.TodayEmoji, settings.TomorrowEmoji, settings.LaterEmoji, settings.UpdatedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put emoji settings", goerr.V("user_id", settings.UserID))
	}
	return nil
}
