package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// Deduplicator guards todo creation against Slack's at-least-once delivery.
// The ledger's unique event key is the authority; Check is only a fast path.
type Deduplicator struct {
	repo interfaces.Repository
}

func NewDeduplicator(repo interfaces.Repository) *Deduplicator {
	return &Deduplicator{repo: repo}
}

// Check reports whether eventKey has not been processed yet. When it has, the
// todo created by the first delivery is returned.
func (d *Deduplicator) Check(ctx context.Context, eventKey string) (bool, types.TodoID, error) {
	existing, err := d.repo.ProcessedEvent().GetByKey(ctx, eventKey)
	if err != nil {
		return false, "", goerr.Wrap(err, "failed to look up processed event", goerr.V("event_key", eventKey))
	}
	if existing == nil {
		return true, "", nil
	}
	return false, existing.TodoID, nil
}

// Record appends event to the ledger. It returns false without error when a
// concurrent delivery recorded the same key first.
func (d *Deduplicator) Record(ctx context.Context, event *model.ProcessedEvent) (bool, error) {
	if event.ID == "" {
		event.ID = types.NewProcessedEventID()
	}

	inserted, err := d.repo.ProcessedEvent().InsertIfAbsent(ctx, event)
	if err != nil {
		return false, goerr.Wrap(err, "failed to record processed event",
			goerr.V("event_key", event.EventKey), goerr.V(TodoIDKey, event.TodoID))
	}
	return inserted, nil
}
