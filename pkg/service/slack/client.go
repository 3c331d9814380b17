package slack

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// DefaultTimeout bounds every Slack API call made by the client
const DefaultTimeout = 10 * time.Second

// Slack API errors that mean the message is simply not reachable
var notFoundErrors = map[string]bool{
	"channel_not_found": true,
	"message_not_found": true,
	"thread_not_found":  true,
	"not_in_channel":    true,
}

type client struct {
	clientID     string
	clientSecret string `masq:"secret"`
	apiURL       string
	httpClient   *http.Client
	timeout      time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPIURL overrides the Slack Web API base URL
func WithAPIURL(u string) Option {
	return func(c *client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.apiURL = u
	}
}

// WithHTTPClient sets the HTTP client used for every Slack request
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// New creates a Slack service for the OAuth app identified by clientID
func New(clientID, clientSecret string, opts ...Option) (Service, error) {
	if clientID == "" || clientSecret == "" {
		return nil, goerr.New("Slack client ID and client secret are required")
	}

	c := &client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiURL:       slack.APIURL,
		httpClient:   &http.Client{},
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) api(token string) *slack.Client {
	return slack.New(token,
		slack.OptionAPIURL(c.apiURL),
		slack.OptionHTTPClient(c.httpClient),
	)
}

func isNotFound(err error) bool {
	var slackErr slack.SlackErrorResponse
	return errors.As(err, &slackErr) && notFoundErrors[slackErr.Err]
}

func messageText(m slack.Message) string {
	if text := strings.TrimSpace(m.Text); text != "" {
		return text
	}
	for _, a := range m.Attachments {
		if text := strings.TrimSpace(a.Text); text != "" {
			return text
		}
		if text := strings.TrimSpace(a.Fallback); text != "" {
			return text
		}
	}
	return ""
}

// GetMessage looks the message up in the channel history first, then in
// thread replies since replies are not part of conversations.history.
func (c *client) GetMessage(ctx context.Context, accessToken, channelID, ts string) (*Message, error) {
	if accessToken == "" {
		return nil, goerr.New("Slack access token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	api := c.api(accessToken)

	history, err := api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    ts,
		Oldest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get conversation history",
			goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}
	for _, m := range history.Messages {
		if m.Timestamp == ts {
			return &Message{ChannelID: channelID, TS: ts, User: m.User, Text: messageText(m)}, nil
		}
	}

	replies, _, _, err := api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: ts,
		Latest:    ts,
		Oldest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get conversation replies",
			goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}
	for _, m := range replies {
		if m.Timestamp == ts {
			return &Message{ChannelID: channelID, TS: ts, User: m.User, Text: messageText(m)}, nil
		}
	}

	return nil, nil
}

// ExchangeOAuthCode prefers the user token over the bot token because reading
// the reacted message must happen with the reacting user's visibility.
func (c *client) ExchangeOAuthCode(ctx context.Context, code, redirectURI string) (*OAuthGrant, error) {
	if code == "" {
		return nil, goerr.New("OAuth code is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := slack.GetOAuthV2ResponseContext(ctx, c.oauthHTTPClient(), c.clientID, c.clientSecret, code, redirectURI)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange OAuth code")
	}

	grant := &OAuthGrant{
		TeamID:       resp.Team.ID,
		TeamName:     resp.Team.Name,
		AccessToken:  resp.AccessToken,
		Scope:        resp.Scope,
		AuthedUserID: resp.AuthedUser.ID,
	}
	if resp.AuthedUser.AccessToken != "" {
		grant.AccessToken = resp.AuthedUser.AccessToken
		grant.Scope = resp.AuthedUser.Scope
		grant.IsUserGranted = true
	}
	if grant.AccessToken == "" {
		return nil, goerr.New("OAuth response has no access token", goerr.V("team_id", grant.TeamID))
	}

	auth, err := c.api(grant.AccessToken).AuthTestContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify granted token", goerr.V("team_id", grant.TeamID))
	}
	grant.WorkspaceURL = auth.URL
	if grant.TeamName == "" {
		grant.TeamName = auth.Team
	}

	return grant, nil
}

// oauthHTTPClient routes oauth.v2.access to the configured API URL. The
// slack package always posts it to the public endpoint.
func (c *client) oauthHTTPClient() *http.Client {
	if c.apiURL == slack.APIURL {
		return c.httpClient
	}

	base, err := url.Parse(c.apiURL)
	if err != nil {
		return c.httpClient
	}

	hc := *c.httpClient
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &rewriteTransport{base: base, next: next}
	return &hc
}

type rewriteTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.base.Scheme
	r.URL.Host = t.base.Host
	r.URL.Path = strings.TrimRight(t.base.Path, "/") + "/" + strings.TrimPrefix(req.URL.Path, "/api/")
	r.Host = t.base.Host
	return t.next.RoundTrip(r)
}
