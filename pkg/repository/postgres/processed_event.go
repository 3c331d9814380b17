package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

type processedEventRepository struct {
	pool *pgxpool.Pool
}

func (r *processedEventRepository) GetByKey(ctx context.Context, eventKey string) (*model.ProcessedEvent, error) {
	var e model.ProcessedEvent
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_key, user_id, channel_id, message_ts, reaction, todo_id, processed_at
		FROM processed_events WHERE event_key = $1`, eventKey,
	).Scan(&e.ID, &e.EventKey, &e.UserID, &e.ChannelID, &e.MessageTS, &e.Reaction, &e.TodoID, &e.ProcessedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get processed event", goerr.V("event_key", eventKey))
	}
	return &e, nil
}

// InsertIfAbsent relies on the event_key unique constraint. A conflicting
// insert returns no row.
func (r *processedEventRepository) InsertIfAbsent(ctx context.Context, event *model.ProcessedEvent) (bool, error) {
	if event == nil || event.EventKey == "" {
		return false, goerr.New("event key is required")
	}

	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO processed_events (id, event_key, user_id, channel_id, message_ts, reaction, todo_id, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_key) DO NOTHING
		RETURNING id`,
		event.ID.String(), event.EventKey, event.UserID.String(), event.ChannelID,
		event.MessageTS, event.Reaction, event.TodoID.String(), event.ProcessedAt,
	).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to insert processed event", goerr.V("event_key", event.EventKey))
	}
	return true, nil
}
