package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	all := []error{
		usecase.ErrWebhookNotFound,
		usecase.ErrConnectionNotFound,
		usecase.ErrTodoNotFound,
		usecase.ErrUserNotFound,
		usecase.ErrSlackUserNotConfigured,
		usecase.ErrSlackNotConfigured,
		usecase.ErrAccessDenied,
		usecase.ErrUnauthorized,
		usecase.ErrInvalidInput,
		usecase.ErrSlackUserIDInUse,
		usecase.ErrSameTodoComparison,
	}

	for i, a := range all {
		for j, b := range all {
			gt.Bool(t, errors.Is(a, b) == (i == j)).True()
		}
	}
}

func TestErrors_WrappedSentinelIsDetected(t *testing.T) {
	err := goerr.Wrap(usecase.ErrSlackUserNotConfigured, "owner", goerr.V(usecase.UserIDKey, "u1"))
	gt.Bool(t, errors.Is(err, usecase.ErrSlackUserNotConfigured)).True()
	gt.Bool(t, errors.Is(err, usecase.ErrAccessDenied)).False()
}
