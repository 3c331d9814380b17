package slack

import (
	"context"
)

// Service provides access to the Slack Web API on behalf of connected users.
// Every call takes the access token of the SlackConnection it acts for.
type Service interface {
	// GetMessage returns the message posted at ts in channelID. It returns
	// (nil, nil) when the message does not exist or is not visible to the token.
	GetMessage(ctx context.Context, accessToken, channelID, ts string) (*Message, error)

	// ExchangeOAuthCode completes the OAuth v2 flow and returns the granted
	// workspace and token
	ExchangeOAuthCode(ctx context.Context, code, redirectURI string) (*OAuthGrant, error)
}

// Message is a fetched Slack message
type Message struct {
	ChannelID string
	TS        string
	User      string
	Text      string
}

// OAuthGrant is the result of a completed OAuth exchange
type OAuthGrant struct {
	TeamID        string
	TeamName      string
	WorkspaceURL  string
	AccessToken   string `masq:"secret"`
	Scope         string
	AuthedUserID  string
	IsUserGranted bool
}
