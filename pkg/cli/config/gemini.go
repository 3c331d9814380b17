package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/quadrant/pkg/service/title"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini LLM client used to title todos
type Gemini struct {
	projectID    string
	location     string
	titleTimeout time.Duration
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "Gemini",
			Sources:     cli.EnvVars("QUADRANT_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("QUADRANT_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.DurationFlag{
			Name:        "title-timeout",
			Usage:       "Timeout of one title generation call",
			Category:    "Gemini",
			Value:       title.DefaultTimeout,
			Sources:     cli.EnvVars("QUADRANT_TITLE_TIMEOUT"),
			Destination: &g.titleTimeout,
		},
	}
}

func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Duration("title_timeout", g.titleTimeout),
	)
}

// Configure creates a new Gemini LLM client from the configured flags.
// Returns nil if projectID is not configured.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return client, nil
}

// ConfigureTitle builds the title service. It returns nil when Gemini is not
// configured, in which case reaction todos get a fallback title.
func (g *Gemini) ConfigureTitle(ctx context.Context) (title.Service, error) {
	client, err := g.Configure(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}

	if g.titleTimeout <= 0 {
		return nil, goerr.New("title-timeout must be positive", goerr.V("timeout", g.titleTimeout))
	}

	svc, err := title.New(client, title.WithTimeout(g.titleTimeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize title service")
	}
	return svc, nil
}
