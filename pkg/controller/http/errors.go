package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/errutil"
)

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrTodoNotFound),
		errors.Is(err, usecase.ErrWebhookNotFound),
		errors.Is(err, usecase.ErrConnectionNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrSameTodoComparison),
		errors.Is(err, usecase.ErrSlackUserNotConfigured):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrSlackUserIDInUse):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrSlackNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusOf(err))
}
