package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID is the internal (auth provider) identifier of an application user
type UserID string

func (x UserID) String() string { return string(x) }

// TodoID identifies a todo
type TodoID string

func NewTodoID() TodoID { return TodoID(uuid.NewString()) }
func (x TodoID) String() string { return string(x) }

// SlackConnectionID identifies one OAuth grant of a user to a Slack workspace
type SlackConnectionID string

func NewSlackConnectionID() SlackConnectionID { return SlackConnectionID(uuid.NewString()) }
func (x SlackConnectionID) String() string { return string(x) }

// SlackWebhookID is the row identifier of a webhook. It is internal and
// distinct from the public WebhookID embedded in the inbound URL.
type SlackWebhookID string

func NewSlackWebhookID() SlackWebhookID { return SlackWebhookID(uuid.NewString()) }
func (x SlackWebhookID) String() string { return string(x) }

// WebhookID is the public, unguessable identifier used in the inbound webhook URL
type WebhookID string

func NewWebhookID() WebhookID { return WebhookID(uuid.NewString()) }
func (x WebhookID) String() string { return string(x) }

// ProcessedEventID identifies a row of the dedup ledger
type ProcessedEventID string

func NewProcessedEventID() ProcessedEventID { return ProcessedEventID(uuid.NewString()) }
func (x ProcessedEventID) String() string { return string(x) }

var (
	slackTeamIDPattern = regexp.MustCompile(`^T[A-Z0-9]+$`)
	slackUserIDPattern = regexp.MustCompile(`^[UW][A-Z0-9]+$`)
)

// SlackTeamID is a Slack workspace (team) identifier such as T0123ABCD
type SlackTeamID string

// Validate checks if the SlackTeamID has Slack's team ID format
func (x SlackTeamID) Validate() error {
	if x == "" {
		return goerr.New("slack team ID cannot be empty")
	}
	if !slackTeamIDPattern.MatchString(string(x)) {
		return goerr.New("slack team ID must start with T followed by uppercase alphanumerics", goerr.V("id", x))
	}
	return nil
}

func (x SlackTeamID) String() string { return string(x) }

// SlackUserID is a Slack member identifier such as U0123ABCD
type SlackUserID string

// Validate checks if the SlackUserID has Slack's member ID format
func (x SlackUserID) Validate() error {
	if x == "" {
		return goerr.New("slack user ID cannot be empty")
	}
	if !slackUserIDPattern.MatchString(string(x)) {
		return goerr.New("slack user ID must start with U or W followed by uppercase alphanumerics", goerr.V("id", x))
	}
	return nil
}

func (x SlackUserID) String() string { return string(x) }
