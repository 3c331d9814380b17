package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/service/notify"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// NATS holds the connection settings for realtime todo notifications
type NATS struct {
	url   string
	token string
}

func (x *NATS) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nats-url",
			Usage:       "NATS server URL; todo creation events are published when set",
			Category:    "Notification",
			Sources:     cli.EnvVars("QUADRANT_NATS_URL"),
			Destination: &x.url,
		},
		&cli.StringFlag{
			Name:        "nats-token",
			Usage:       "NATS authentication token",
			Category:    "Notification",
			Sources:     cli.EnvVars("QUADRANT_NATS_TOKEN"),
			Destination: &x.token,
		},
	}
}

func (x NATS) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.url),
		slog.Int("token.len", len(x.token)),
	)
}

// Configure connects to NATS. It returns nil when no URL is set.
func (x *NATS) Configure() (*notify.NATS, error) {
	if x.url == "" {
		return nil, nil
	}

	n, err := notify.NewNATS(x.url, x.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure NATS notifier")
	}
	logging.Default().Info("NATS notifier enabled", "subject", notify.SubjectTodoCreated)
	return n, nil
}
