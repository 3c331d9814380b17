package firestore

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type emojiSettingsRepository struct {
	base
}

type emojiSettingsDoc struct {
	UserID        string    `firestore:"user_id"`
	TodayEmoji    string    `firestore:"today_emoji"`
	TomorrowEmoji string    `firestore:"tomorrow_emoji"`
	LaterEmoji    string    `firestore:"later_emoji"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

func (r *emojiSettingsRepository) Get(ctx context.Context, userID types.UserID) (*model.EmojiSettings, error) {
	snap, err := r.collection(CollectionEmojiSettings).Doc(userID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get emoji settings", goerr.V("user_id", userID))
	}

	var doc emojiSettingsDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode emoji settings", goerr.V("user_id", userID))
	}
	return &model.EmojiSettings{
		UserID:        types.UserID(doc.UserID),
		TodayEmoji:    doc.TodayEmoji,
		TomorrowEmoji: doc.TomorrowEmoji,
		LaterEmoji:    doc.LaterEmoji,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func (r *emojiSettingsRepository) Put(ctx context.Context, settings *model.EmojiSettings) error {
	if settings == nil || settings.UserID == "" {
		return goerr.New("emoji settings user ID is required")
	}

	doc := &emojiSettingsDoc{
		UserID:        settings.UserID.String(),
		TodayEmoji:    settings.TodayEmoji,
		TomorrowEmoji: settings.TomorrowEmoji,
		LaterEmoji:    settings.LaterEmoji,
		UpdatedAt:     settings.UpdatedAt,
	}
	if _, err := r.collection(CollectionEmojiSettings).Doc(doc.UserID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put emoji settings", goerr.V("user_id", settings.UserID))
	}
	return nil
}
