package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Emoji holds the system-wide emoji mapping used for users without settings
type Emoji struct {
	today    string
	tomorrow string
	later    string
}

func (x *Emoji) Flags() []cli.Flag {
	defaults := model.DefaultEmojiSettings()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "default-today-emoji",
			Usage:       "Reaction that creates a todo due today",
			Category:    "Emoji",
			Value:       defaults.TodayEmoji,
			Sources:     cli.EnvVars("QUADRANT_DEFAULT_TODAY_EMOJI"),
			Destination: &x.today,
		},
		&cli.StringFlag{
			Name:        "default-tomorrow-emoji",
			Usage:       "Reaction that creates a todo due tomorrow",
			Category:    "Emoji",
			Value:       defaults.TomorrowEmoji,
			Sources:     cli.EnvVars("QUADRANT_DEFAULT_TOMORROW_EMOJI"),
			Destination: &x.tomorrow,
		},
		&cli.StringFlag{
			Name:        "default-later-emoji",
			Usage:       "Reaction that creates a todo without deadline",
			Category:    "Emoji",
			Value:       defaults.LaterEmoji,
			Sources:     cli.EnvVars("QUADRANT_DEFAULT_LATER_EMOJI"),
			Destination: &x.later,
		},
	}
}

func (x Emoji) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("today", x.today),
		slog.String("tomorrow", x.tomorrow),
		slog.String("later", x.later),
	)
}

// Configure validates the mapping
func (x *Emoji) Configure() (model.EmojiSettings, error) {
	settings := model.EmojiSettings{
		TodayEmoji:    x.today,
		TomorrowEmoji: x.tomorrow,
		LaterEmoji:    x.later,
	}.Normalized()

	if err := settings.Validate(); err != nil {
		return model.EmojiSettings{}, goerr.Wrap(err, "invalid default emoji settings")
	}
	return settings, nil
}
