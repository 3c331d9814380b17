package interfaces

import (
	"context"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

// ProcessedEventRepository is the append-only dedup ledger. EventKey is unique.
type ProcessedEventRepository interface {
	GetByKey(ctx context.Context, eventKey string) (*model.ProcessedEvent, error)

	// InsertIfAbsent atomically inserts the event. It returns false without error
	// when a row with the same EventKey already exists.
	InsertIfAbsent(ctx context.Context, event *model.ProcessedEvent) (bool, error)
}
