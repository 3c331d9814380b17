package firestore

import (
	"context"
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

type userRepository struct {
	base
}

type userDoc struct {
	ID          string    `firestore:"id"`
	Email       string    `firestore:"email"`
	SlackUserID string    `firestore:"slack_user_id"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:          types.UserID(d.ID),
		Email:       d.Email,
		SlackUserID: types.SlackUserID(d.SlackUserID),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	snap, err := r.collection(CollectionUsers).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("user_id", id))
	}
	return doc.toModel(), nil
}

func (r *userRepository) GetBySlackUserID(ctx context.Context, slackUserID types.SlackUserID) (*model.User, error) {
	if slackUserID == "" {
		return nil, nil
	}

	iter := r.collection(CollectionUsers).
		Where("slack_user_id", "==", slackUserID.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user by slack user ID", goerr.V("slack_user_id", slackUserID))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", snap.Ref.ID))
	}
	return doc.toModel(), nil
}

// slackUserLinkDoc claims a Slack member for one user. The document ID is the
// Slack user ID.
type slackUserLinkDoc struct {
	UserID string `firestore:"user_id"`
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if user == nil || user.ID == "" {
		return goerr.New("user ID is required")
	}

	doc := &userDoc{
		ID:          user.ID.String(),
		Email:       user.Email,
		SlackUserID: user.SlackUserID.String(),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	userRef := r.collection(CollectionUsers).Doc(doc.ID)
	links := r.collection(CollectionSlackUserLinks)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var previous string
		snap, err := tx.Get(userRef)
		switch {
		case err == nil:
			var current userDoc
			if err := snap.DataTo(&current); err != nil {
				return goerr.Wrap(err, "failed to decode user", goerr.V("user_id", user.ID))
			}
			previous = current.SlackUserID
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get user", goerr.V("user_id", user.ID))
		}

		if doc.SlackUserID != "" && doc.SlackUserID != previous {
			linkSnap, err := tx.Get(links.Doc(doc.SlackUserID))
			switch {
			case err == nil:
				var link slackUserLinkDoc
				if err := linkSnap.DataTo(&link); err != nil {
					return goerr.Wrap(err, "failed to decode slack user link", goerr.V("slack_user_id", doc.SlackUserID))
				}
				if link.UserID != doc.ID {
					return goerr.Wrap(interfaces.ErrAlreadyExists, "slack user ID is linked to another user",
						goerr.V("user_id", user.ID), goerr.V("slack_user_id", doc.SlackUserID))
				}
			case status.Code(err) != codes.NotFound:
				return goerr.Wrap(err, "failed to get slack user link", goerr.V("slack_user_id", doc.SlackUserID))
			}
		}

		if previous != "" && previous != doc.SlackUserID {
			if err := tx.Delete(links.Doc(previous)); err != nil {
				return goerr.Wrap(err, "failed to release slack user link", goerr.V("slack_user_id", previous))
			}
		}
		if doc.SlackUserID != "" {
			if err := tx.Set(links.Doc(doc.SlackUserID), &slackUserLinkDoc{UserID: doc.ID}); err != nil {
				return goerr.Wrap(err, "failed to claim slack user link", goerr.V("slack_user_id", doc.SlackUserID))
			}
		}
		return tx.Set(userRef, doc)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("user_id", user.ID))
	}
	return nil
}
