package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/service/slack"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	clientID      string
	clientSecret  string
	signingSecret string
	apiURL        string
	apiTimeout    time.Duration
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack OAuth client ID",
			Category:    "Slack",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("QUADRANT_SLACK_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-client-secret",
			Usage:       "Slack OAuth client secret",
			Category:    "Slack",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("QUADRANT_SLACK_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("QUADRANT_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack Web API base URL",
			Category:    "Slack",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("QUADRANT_SLACK_API_URL"),
		},
		&cli.DurationFlag{
			Name:        "slack-api-timeout",
			Usage:       "Timeout of each Slack API call",
			Category:    "Slack",
			Value:       slack.DefaultTimeout,
			Destination: &x.apiTimeout,
			Sources:     cli.EnvVars("QUADRANT_SLACK_API_TIMEOUT"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("api-url", x.apiURL),
		slog.Duration("api-timeout", x.apiTimeout),
	)
}

// IsConfigured checks if the OAuth app credentials are set
func (x *Slack) IsConfigured() bool {
	return x.clientID != "" && x.clientSecret != ""
}

// IsWebhookConfigured checks if Slack webhook verification is possible
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// Configure creates the Slack Web API service. It returns nil when the OAuth
// app is not configured; connecting workspaces and fetching messages are then
// unavailable.
func (x *Slack) Configure() (slack.Service, error) {
	if !x.IsConfigured() {
		if x.clientID != "" || x.clientSecret != "" {
			return nil, goerr.New("both --slack-client-id and --slack-client-secret are required")
		}
		return nil, nil
	}

	if x.apiTimeout <= 0 {
		return nil, goerr.New("slack-api-timeout must be positive", goerr.V("timeout", x.apiTimeout))
	}

	opts := []slack.Option{slack.WithTimeout(x.apiTimeout)}
	if x.apiURL != "" {
		opts = append(opts, slack.WithAPIURL(x.apiURL))
	}

	svc, err := slack.New(x.clientID, x.clientSecret, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	logging.Default().Info("Slack service enabled")
	return svc, nil
}
