package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth configures how /api requests are authenticated
type Auth struct {
	jwtSecret string
	jwksURL   string
	issuer    string
	audience  string
	noAuthUID string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret used to verify API access tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("QUADRANT_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
		&cli.StringFlag{
			Name:        "jwks-url",
			Usage:       "JWKS endpoint used to verify API access tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("QUADRANT_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Required iss claim of API access tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("QUADRANT_JWT_ISSUER"),
			Destination: &x.issuer,
		},
		&cli.StringFlag{
			Name:        "jwt-audience",
			Usage:       "Required aud claim of API access tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("QUADRANT_JWT_AUDIENCE"),
			Destination: &x.audience,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the specified user ID (development only). Example: --no-auth=dev-user",
			Category:    "Authentication",
			Sources:     cli.EnvVars("QUADRANT_NO_AUTH"),
			Destination: &x.noAuthUID,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.String("jwks-url", x.jwksURL),
		slog.String("issuer", x.issuer),
		slog.String("audience", x.audience),
		slog.String("no-auth", x.noAuthUID),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthUID != ""
}

// Configure returns the authenticator for /api. It returns nil when neither a
// key nor no-auth mode is configured; the REST API is then not served.
func (x *Auth) Configure(ctx context.Context, repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.noAuthUID != "" {
		if x.jwtSecret != "" || x.jwksURL != "" {
			logging.Default().Warn("--no-auth is set, ignoring --jwt-secret/--jwks-url")
		}
		return usecase.NewNoAuthnUseCase(repo, types.UserID(x.noAuthUID), ""), nil
	}

	if x.jwtSecret == "" && x.jwksURL == "" {
		return nil, nil
	}

	var opts []usecase.AuthOption
	if x.jwtSecret != "" {
		opts = append(opts, usecase.WithHMACSecret(x.jwtSecret))
	}
	if x.jwksURL != "" {
		set, err := usecase.FetchKeySet(ctx, x.jwksURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load JWKS", goerr.V("url", x.jwksURL))
		}
		opts = append(opts, usecase.WithKeySet(set))
	}
	if x.issuer != "" {
		opts = append(opts, usecase.WithIssuer(x.issuer))
	}
	if x.audience != "" {
		opts = append(opts, usecase.WithAudience(x.audience))
	}

	authUC, err := usecase.NewAuthUseCase(repo, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure authentication")
	}
	return authUC, nil
}
