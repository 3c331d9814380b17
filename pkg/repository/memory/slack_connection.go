package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type slackConnectionRepository struct {
	mu          sync.RWMutex
	connections map[types.SlackConnectionID]*model.SlackConnection
}

func newSlackConnectionRepository() *slackConnectionRepository {
	return &slackConnectionRepository{
		connections: make(map[types.SlackConnectionID]*model.SlackConnection),
	}
}

func (r *slackConnectionRepository) Get(ctx context.Context, id types.SlackConnectionID) (*model.SlackConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connections[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *slackConnectionRepository) GetByUserAndWorkspace(ctx context.Context, userID types.UserID, workspaceID types.SlackTeamID) (*model.SlackConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.connections {
		if c.UserID == userID && c.WorkspaceID == workspaceID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *slackConnectionRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.SlackConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SlackConnection, 0)
	for _, c := range r.connections {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
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

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *conn
	r.connections[conn.ID] = &cp
	return nil
}

func (r *slackConnectionRepository) Delete(ctx context.Context, id types.SlackConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connections, id)
	return nil
}
