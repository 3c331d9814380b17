package slack

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/slack-go/slack/slackevents"
)

// Payload is a decoded Events API request body. It is one of
// *ChallengeRequest, *EventCallback or *UnsupportedPayload.
type Payload interface {
	payload()
}

// ChallengeRequest is Slack's URL verification handshake
type ChallengeRequest struct {
	Challenge string
}

// EventCallback is an event_callback envelope. Reaction is set only for
// reaction_added events.
type EventCallback struct {
	TeamID    string
	EventID   string
	EventTime int64
	EventType string
	Reaction  *ReactionEvent
}

// UnsupportedPayload is any other envelope type, such as app_rate_limited
type UnsupportedPayload struct {
	Type string
}

func (*ChallengeRequest) payload() {}
func (*EventCallback) payload() {}
func (*UnsupportedPayload) payload() {}

// ReactionEvent is a reaction_added event on a message
type ReactionEvent struct {
	User      types.SlackUserID
	Reaction  string
	ItemUser  string
	ItemType  string
	ChannelID string
	MessageTS string
	EventTS   string
}

// EventKey returns the idempotency key of the reaction
func (e *ReactionEvent) EventKey() string {
	return model.BuildEventKey(e.ChannelID, e.MessageTS, e.Reaction, e.User)
}

type envelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	TeamID    string          `json:"team_id"`
	EventID   string          `json:"event_id"`
	EventTime int64           `json:"event_time"`
	Event     json.RawMessage `json:"event"`
}

// ParsePayload decodes a raw Events API body. Any body carrying a challenge is
// treated as a ChallengeRequest regardless of its type field.
func ParsePayload(body []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, goerr.Wrap(err, "failed to decode slack payload")
	}

	if env.Challenge != "" {
		return &ChallengeRequest{Challenge: env.Challenge}, nil
	}

	if env.Type != string(slackevents.CallbackEvent) {
		return &UnsupportedPayload{Type: env.Type}, nil
	}

	cb := &EventCallback{
		TeamID:    env.TeamID,
		EventID:   env.EventID,
		EventTime: env.EventTime,
	}
	if len(env.Event) == 0 {
		return nil, goerr.New("event_callback without event", goerr.V("event_id", env.EventID))
	}

	var inner struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(env.Event, &inner); err != nil {
		return nil, goerr.Wrap(err, "failed to decode inner event", goerr.V("event_id", env.EventID))
	}
	cb.EventType = inner.Type

	if inner.Type == string(slackevents.ReactionAdded) {
		var ev slackevents.ReactionAddedEvent
		if err := json.Unmarshal(env.Event, &ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode reaction_added event", goerr.V("event_id", env.EventID))
		}
		cb.Reaction = &ReactionEvent{
			User:      types.SlackUserID(ev.User),
			Reaction:  ev.Reaction,
			ItemUser:  ev.ItemUser,
			ItemType:  ev.Item.Type,
			ChannelID: ev.Item.Channel,
			MessageTS: ev.Item.Timestamp,
			EventTS:   ev.EventTimestamp,
		}
	}

	return cb, nil
}
