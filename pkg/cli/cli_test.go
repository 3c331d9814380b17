package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/cli"
)

func TestRun_MigrateRejectsMemoryBackend(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"quadrant", "--log-output", "stderr",
		"migrate", "--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"quadrant", "--log-level", "verbose", "migrate",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ServeRejectsInvalidDefaultEmoji(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"quadrant", "--log-output", "stderr",
		"serve",
		"--repository-backend", "memory",
		"--default-today-emoji", "fire",
		"--default-tomorrow-emoji", "fire",
	}, "test")
	gt.Value(t, err).NotNil()
}
