package errutil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

// Handle logs err with its goerr values and stack and forwards it to Sentry when
// a Sentry client is configured.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logError(ctx, slog.LevelError, msg, err)

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.Clone().CaptureException(err)
	}
}

// HandleHTTP logs the error and writes an HTTP error response. Server errors
// and authentication failures get the bare status text so internal detail is
// never leaked.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	body := err.Error()
	switch {
	case statusCode >= http.StatusInternalServerError:
		Handle(ctx, err, "HTTP error")
		body = http.StatusText(statusCode)
	case statusCode == http.StatusUnauthorized:
		logError(ctx, slog.LevelWarn, "HTTP error", err, slog.Int("status", statusCode))
		body = http.StatusText(statusCode)
	default:
		logError(ctx, slog.LevelInfo, "HTTP error", err, slog.Int("status", statusCode))
	}

	http.Error(w, body, statusCode)
}

func logError(ctx context.Context, level slog.Level, msg string, err error, attrs ...any) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		attrs = append(attrs, "error", err.Error())
	}
	logger.Log(ctx, level, msg, attrs...)
}
