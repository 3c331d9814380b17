package title

import (
	"context"
	"time"
)

// NewWithGenerator builds a client around fn instead of an LLM client
func NewWithGenerator(fn func(ctx context.Context, prompt string) (string, error), timeout time.Duration) Service {
	return newClient(fn, WithTimeout(timeout))
}

var CleanTitle = cleanTitle
