package title

import "context"

// Service turns free-form message text into a short task title
type Service interface {
	GenerateTitle(ctx context.Context, text string) (string, error)
}
