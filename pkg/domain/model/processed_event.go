package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// ProcessedEvent is a row of the append-only dedup ledger. One row exists per
// reaction event that produced a todo.
type ProcessedEvent struct {
	ID          types.ProcessedEventID
	EventKey    string
	UserID      types.UserID
	ChannelID   string
	MessageTS   string
	Reaction    string
	TodoID      types.TodoID
	ProcessedAt time.Time
}

// BuildEventKey derives the idempotency key of a reaction event. The fields are
// bounded identifiers, so a readable join is kept instead of a hash.
func BuildEventKey(channelID, messageTS, reaction string, slackUserID types.SlackUserID) string {
	return strings.Join([]string{channelID, messageTS, reaction, slackUserID.String()}, ":")
}
