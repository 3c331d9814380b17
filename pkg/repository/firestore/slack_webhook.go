package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// slackWebhookRepository keys documents by (user, connection) so that
// Firestore's create-if-absent semantics enforce one webhook per pair.
type slackWebhookRepository struct {
	base
}

type slackWebhookDoc struct {
	ID                string     `firestore:"id"`
	UserID            string     `firestore:"user_id"`
	SlackConnectionID string     `firestore:"slack_connection_id"`
	WebhookID         string     `firestore:"webhook_id"`
	Secret            string     `firestore:"secret"`
	IsActive          bool       `firestore:"is_active"`
	LastEventAt       *time.Time `firestore:"last_event_at"`
	EventCount        int64      `firestore:"event_count"`
	CreatedAt         time.Time  `firestore:"created_at"`
	UpdatedAt         time.Time  `firestore:"updated_at"`
}

func pairDocID(userID types.UserID, connectionID types.SlackConnectionID) string {
	return userID.String() + "_" + connectionID.String()
}

func toSlackWebhookDoc(w *model.SlackWebhook) *slackWebhookDoc {
	return &slackWebhookDoc{
		ID:                w.ID.String(),
		UserID:            w.UserID.String(),
		SlackConnectionID: w.SlackConnectionID.String(),
		WebhookID:         w.WebhookID.String(),
		Secret:            w.Secret,
		IsActive:          w.IsActive,
		LastEventAt:       w.LastEventAt,
		EventCount:        w.EventCount,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func (d *slackWebhookDoc) toModel() *model.SlackWebhook {
	return &model.SlackWebhook{
		ID:                types.SlackWebhookID(d.ID),
		UserID:            types.UserID(d.UserID),
		SlackConnectionID: types.SlackConnectionID(d.SlackConnectionID),
		WebhookID:         types.WebhookID(d.WebhookID),
		Secret:            d.Secret,
		IsActive:          d.IsActive,
		LastEventAt:       d.LastEventAt,
		EventCount:        d.EventCount,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func decodeWebhook(snap *firestore.DocumentSnapshot) (*model.SlackWebhook, error) {
	var doc slackWebhookDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode slack webhook", goerr.V("doc_id", snap.Ref.ID))
	}
	return doc.toModel(), nil
}

func (r *slackWebhookRepository) findRef(ctx context.Context, webhookID types.WebhookID) (*firestore.DocumentSnapshot, error) {
	iter := r.collection(CollectionSlackWebhooks).
		Where("webhook_id", "==", webhookID.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query slack webhook", goerr.V("webhook_id", webhookID))
	}
	return snap, nil
}

func (r *slackWebhookRepository) GetByWebhookID(ctx context.Context, webhookID types.WebhookID) (*model.SlackWebhook, error) {
	snap, err := r.findRef(ctx, webhookID)
	if err != nil || snap == nil {
		return nil, err
	}
	return decodeWebhook(snap)
}

func (r *slackWebhookRepository) GetByUserAndConnection(ctx context.Context, userID types.UserID, connectionID types.SlackConnectionID) (*model.SlackWebhook, error) {
	snap, err := r.collection(CollectionSlackWebhooks).Doc(pairDocID(userID, connectionID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get slack webhook",
			goerr.V("user_id", userID), goerr.V("connection_id", connectionID))
	}
	return decodeWebhook(snap)
}

func (r *slackWebhookRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackWebhook, error) {
	iter := r.collection(CollectionSlackWebhooks).
		Where("user_id", "==", userID.String()).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.SlackWebhook, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate slack webhooks", goerr.V("user_id", userID))
		}
		w, err := decodeWebhook(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *slackWebhookRepository) Create(ctx context.Context, webhook *model.SlackWebhook) error {
	ref := r.collection(CollectionSlackWebhooks).Doc(pairDocID(webhook.UserID, webhook.SlackConnectionID))
	if _, err := ref.Create(ctx, toSlackWebhookDoc(webhook)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "webhook already exists for connection",
				goerr.V("user_id", webhook.UserID), goerr.V("connection_id", webhook.SlackConnectionID))
		}
		return goerr.Wrap(err, "failed to create slack webhook", goerr.V("webhook_id", webhook.WebhookID))
	}
	return nil
}

func (r *slackWebhookRepository) SetActive(ctx context.Context, webhookID types.WebhookID, active bool, at time.Time) (*model.SlackWebhook, error) {
	found, err := r.findRef(ctx, webhookID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
	}

	at = at.UTC()
	var result *model.SlackWebhook
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(found.Ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
			}
			return goerr.Wrap(err, "failed to get slack webhook", goerr.V("webhook_id", webhookID))
		}

		current, err := decodeWebhook(snap)
		if err != nil {
			return err
		}
		if current.WebhookID != webhookID {
			return goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
		}

		if err := tx.Update(found.Ref, []firestore.Update{
			{Path: "is_active", Value: active},
			{Path: "updated_at", Value: at},
		}); err != nil {
			return goerr.Wrap(err, "failed to update slack webhook", goerr.V("webhook_id", webhookID))
		}

		updated := current.WithActive(active, at)
		result = &updated
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to set webhook active flag", goerr.V("webhook_id", webhookID))
	}
	return result, nil
}

func (r *slackWebhookRepository) RecordEvent(ctx context.Context, webhookID types.WebhookID, at time.Time) (*model.SlackWebhook, error) {
	snap, err := r.findRef(ctx, webhookID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "webhook not found", goerr.V("webhook_id", webhookID))
	}

	at = at.UTC()
	_, err = snap.Ref.Update(ctx, []firestore.Update{
		{Path: "event_count", Value: firestore.Increment(1)},
		{Path: "last_event_at", Value: at},
		{Path: "updated_at", Value: at},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record webhook event", goerr.V("webhook_id", webhookID))
	}

	updated, err := snap.Ref.Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reload slack webhook", goerr.V("webhook_id", webhookID))
	}
	return decodeWebhook(updated)
}
