package firestore

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type slackConnectionRepository struct {
	base
}

type slackConnectionDoc struct {
	ID            string    `firestore:"id"`
	UserID        string    `firestore:"user_id"`
	WorkspaceID   string    `firestore:"workspace_id"`
	WorkspaceName string    `firestore:"workspace_name"`
	TeamName      string    `firestore:"team_name"`
	AccessToken   string    `firestore:"access_token"`
	Scope         string    `firestore:"scope"`
	CreatedAt     time.Time `firestore:"created_at"`
}

func (d *slackConnectionDoc) toModel() *model.SlackConnection {
	return &model.SlackConnection{
		ID:            types.SlackConnectionID(d.ID),
		UserID:        types.UserID(d.UserID),
		WorkspaceID:   types.SlackTeamID(d.WorkspaceID),
		WorkspaceName: d.WorkspaceName,
		TeamName:      d.TeamName,
		AccessToken:   d.AccessToken,
		Scope:         d.Scope,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *slackConnectionRepository) Get(ctx context.Context, id types.SlackConnectionID) (*model.SlackConnection, error) {
	snap, err := r.collection(CollectionSlackConnections).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get slack connection", goerr.V("connection_id", id))
	}

	var doc slackConnectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode slack connection", goerr.V("connection_id", id))
	}
	return doc.toModel(), nil
}

func (r *slackConnectionRepository) GetByUserAndWorkspace(ctx context.Context, userID types.UserID, workspaceID types.SlackTeamID) (*model.SlackConnection, error) {
	iter := r.collection(CollectionSlackConnections).
		Where("user_id", "==", userID.String()).
		Where("workspace_id", "==", workspaceID.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query slack connection",
			goerr.V("user_id", userID), goerr.V("workspace_id", workspaceID))
	}

	var doc slackConnectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode slack connection", goerr.V("doc_id", snap.Ref.ID))
	}
	return doc.toModel(), nil
}

func (r *slackConnectionRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackConnection, error) {
	iter := r.collection(CollectionSlackConnections).
		Where("user_id", "==", userID.String()).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.SlackConnection, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate slack connections", goerr.V("user_id", userID))
		}

		var doc slackConnectionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode slack connection", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *slackConnectionRepository) Put(ctx context.Context, conn *model.SlackConnection) error {
	if err := conn.Validate(); err != nil {
		return err
	}

	doc := &slackConnectionDoc{
		ID:            conn.ID.String(),
		UserID:        conn.UserID.String(),
		WorkspaceID:   conn.WorkspaceID.String(),
		WorkspaceName: conn.WorkspaceName,
		TeamName:      conn.TeamName,
		AccessToken:   conn.AccessToken,
		Scope:         conn.Scope,
		CreatedAt:     conn.CreatedAt,
	}
	if _, err := r.collection(CollectionSlackConnections).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put slack connection", goerr.V("connection_id", conn.ID))
	}
	return nil
}

func (r *slackConnectionRepository) Delete(ctx context.Context, id types.SlackConnectionID) error {
	if _, err := r.collection(CollectionSlackConnections).Doc(id.String()).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete slack connection", goerr.V("connection_id", id))
	}
	return nil
}
