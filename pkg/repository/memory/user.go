package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[types.UserID]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.UserID]*model.User),
	}
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *userRepository) GetBySlackUserID(ctx context.Context, slackUserID types.SlackUserID) (*model.User, error) {
	if slackUserID == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.SlackUserID == slackUserID {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if user == nil || user.ID == "" {
		return goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user.SlackUserID != "" {
		for id, u := range r.users {
			if id != user.ID && u.SlackUserID == user.SlackUserID {
				return goerr.Wrap(interfaces.ErrAlreadyExists, "slack user ID is linked to another user",
					goerr.V("user_id", user.ID), goerr.V("slack_user_id", user.SlackUserID))
			}
		}
	}

	c := *user
	r.users[user.ID] = &c
	return nil
}
