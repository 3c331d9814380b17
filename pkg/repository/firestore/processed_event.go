package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type processedEventRepository struct {
	base
}

type processedEventDoc struct {
	ID          string    `firestore:"id"`
	EventKey    string    `firestore:"event_key"`
	UserID      string    `firestore:"user_id"`
	ChannelID   string    `firestore:"channel_id"`
	MessageTS   string    `firestore:"message_ts"`
	Reaction    string    `firestore:"reaction"`
	TodoID      string    `firestore:"todo_id"`
	ProcessedAt time.Time `firestore:"processed_at"`
}

// eventDocID hashes the key since Slack fields may contain characters that
// are not allowed in document IDs.
func eventDocID(eventKey string) string {
	sum := sha256.Sum256([]byte(eventKey))
	return hex.EncodeToString(sum[:])
}

func (r *processedEventRepository) GetByKey(ctx context.Context, eventKey string) (*model.ProcessedEvent, error) {
	snap, err := r.collection(CollectionProcessedEvents).Doc(eventDocID(eventKey)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get processed event", goerr.V("event_key", eventKey))
	}

	var doc processedEventDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode processed event", goerr.V("event_key", eventKey))
	}
	return &model.ProcessedEvent{
		ID:          types.ProcessedEventID(doc.ID),
		EventKey:    doc.EventKey,
		UserID:      types.UserID(doc.UserID),
		ChannelID:   doc.ChannelID,
		MessageTS:   doc.MessageTS,
		Reaction:    doc.Reaction,
		TodoID:      types.TodoID(doc.TodoID),
		ProcessedAt: doc.ProcessedAt,
	}, nil
}

func (r *processedEventRepository) InsertIfAbsent(ctx context.Context, event *model.ProcessedEvent) (bool, error) {
	if event == nil || event.EventKey == "" {
		return false, goerr.New("event key is required")
	}

	doc := &processedEventDoc{
		ID:          event.ID.String(),
		EventKey:    event.EventKey,
		UserID:      event.UserID.String(),
		ChannelID:   event.ChannelID,
		MessageTS:   event.MessageTS,
		Reaction:    event.Reaction,
		TodoID:      event.TodoID.String(),
		ProcessedAt: event.ProcessedAt,
	}

	if _, err := r.collection(CollectionProcessedEvents).Doc(eventDocID(event.EventKey)).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to insert processed event", goerr.V("event_key", event.EventKey))
	}
	return true, nil
}
