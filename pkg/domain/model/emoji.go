package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// EmojiSettings maps three reaction emoji names to urgency buckets
type EmojiSettings struct {
	UserID        types.UserID
	TodayEmoji    string
	TomorrowEmoji string
	LaterEmoji    string
	UpdatedAt     time.Time
}

// DefaultEmojiSettings is used for users that have not configured a mapping
func DefaultEmojiSettings() EmojiSettings {
	return EmojiSettings{
		TodayEmoji:    "memo",
		TomorrowEmoji: "calendar",
		LaterEmoji:    "fire",
	}
}

// Validate requires three distinct emoji names
func (s *EmojiSettings) Validate() error {
	slots := map[types.Urgency]string{
		types.UrgencyToday:    NormalizeEmoji(s.TodayEmoji),
		types.UrgencyTomorrow: NormalizeEmoji(s.TomorrowEmoji),
		types.UrgencyLater:    NormalizeEmoji(s.LaterEmoji),
	}

	seen := make(map[string]types.Urgency, len(slots))
	for _, u := range types.AllUrgencies() {
		name := slots[u]
		if name == "" {
			return goerr.New("emoji is required", goerr.V("urgency", u))
		}
		if other, ok := seen[name]; ok {
			return goerr.New("emoji is assigned to more than one urgency",
				goerr.V("emoji", name), goerr.V("urgency", u), goerr.V("other", other))
		}
		seen[name] = u
	}
	return nil
}

// Normalized returns a copy with emoji names in Slack's bare form
func (s EmojiSettings) Normalized() EmojiSettings {
	s.TodayEmoji = NormalizeEmoji(s.TodayEmoji)
	s.TomorrowEmoji = NormalizeEmoji(s.TomorrowEmoji)
	s.LaterEmoji = NormalizeEmoji(s.LaterEmoji)
	return s
}

// NormalizeEmoji strips surrounding colons and a skin tone modifier, so that
// ":thumbsup::skin-tone-3:" and "thumbsup" compare equal.
func NormalizeEmoji(name string) string {
	name = strings.Trim(strings.TrimSpace(name), ":")
	if idx := strings.Index(name, "::skin-tone-"); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// ResolveUrgency maps a reaction to an urgency bucket. settings may be nil, in
// which case defaults are matched. The second return value is false when the
// reaction is not a task creation emoji.
func ResolveUrgency(reaction string, settings *EmojiSettings, defaults EmojiSettings) (types.Urgency, bool) {
	s := defaults
	if settings != nil {
		s = *settings
	}

	name := NormalizeEmoji(reaction)
	if name == "" {
		return "", false
	}

	switch name {
	case NormalizeEmoji(s.TodayEmoji):
		return types.UrgencyToday, true
	case NormalizeEmoji(s.TomorrowEmoji):
		return types.UrgencyTomorrow, true
	case NormalizeEmoji(s.LaterEmoji):
		return types.UrgencyLater, true
	default:
		return "", false
	}
}

// UrgencyToDeadline computes the deadline of a todo created with urgency u.
// "later" has no deadline.
func UrgencyToDeadline(u types.Urgency, now time.Time) *Date {
	today := DateOf(now)
	switch u {
	case types.UrgencyToday:
		return &today
	case types.UrgencyTomorrow:
		tomorrow := today.AddDays(1)
		return &tomorrow
	default:
		return nil
	}
}
