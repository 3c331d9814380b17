package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/cli/config"
	httpctrl "github.com/secmon-lab/quadrant/pkg/controller/http"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/async"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var (
		addr            string
		baseURL         string
		shutdownTimeout time.Duration
		repoCfg         config.Repository
		slackCfg        config.Slack
		geminiCfg       config.Gemini
		natsCfg         config.NATS
		authCfg         config.Auth
		sentryCfg       config.Sentry
		emojiCfg        config.Emoji
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("QUADRANT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL used to build webhook URLs (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("QUADRANT_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Time to wait for in-flight requests and background tasks on shutdown",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("QUADRANT_SHUTDOWN_TIMEOUT"),
			Destination: &shutdownTimeout,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, natsCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, emojiCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"addr", addr,
				"base_url", baseURL,
				"repository", repoCfg,
				"slack", slackCfg,
				"gemini", geminiCfg,
				"nats", natsCfg,
				"auth", authCfg,
				"sentry", sentryCfg,
				"emoji", emojiCfg,
			)

			flushSentry, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flushSentry()

			defaultEmoji, err := emojiCfg.Configure()
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{
				usecase.WithBaseURL(baseURL),
				usecase.WithDefaultEmoji(defaultEmoji),
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
			} else {
				logger.Warn("Slack OAuth app not configured, workspaces cannot be connected and reactions are not processed")
			}

			titleSvc, err := geminiCfg.ConfigureTitle(ctx)
			if err != nil {
				return err
			}
			if titleSvc != nil {
				ucOpts = append(ucOpts, usecase.WithTitleService(titleSvc))
				logger.Info("LLM title generation enabled")
			}

			notifier, err := natsCfg.Configure()
			if err != nil {
				return err
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				defer func() {
					if err := notifier.Close(); err != nil {
						logger.Warn("failed to close NATS connection", "error", err)
					}
				}()
			}

			authUC, err := authCfg.Configure(ctx, repo)
			if err != nil {
				return err
			}
			httpOpts := []httpctrl.Options{}
			switch {
			case authUC == nil:
				logger.Warn("API authentication not configured, /api is disabled")
			case authCfg.IsNoAuthMode():
				logger.Warn("Running in no-auth mode (development only)")
			default:
				logger.Info("JWT authentication enabled")
			}
			if authUC != nil {
				ucOpts = append(ucOpts, usecase.WithAuth(authUC))
				httpOpts = append(httpOpts, httpctrl.WithAuth(authUC))
			}

			if !slackCfg.IsWebhookConfigured() {
				logger.Warn("Slack signing secret not configured, every webhook request will be rejected")
			}
			httpOpts = append(httpOpts, httpctrl.WithSlackSigningSecret(slackCfg.SigningSecret()))

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// Reaction tasks run detached from requests, so they are drained
			// after the listener stops and before the repository closes.
			if !async.Wait(shutdownTimeout) {
				logger.Warn("Background tasks still running after shutdown timeout", "timeout", shutdownTimeout)
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
