package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

type UserUseCase struct {
	repo  interfaces.Repository
	clock func() time.Time
}

func NewUserUseCase(repo interfaces.Repository, clock func() time.Time) *UserUseCase {
	return &UserUseCase{
		repo:  repo,
		clock: clock,
	}
}

// EnsureUser returns the user, creating it on first sight. A changed email is
// written back.
func (uc *UserUseCase) EnsureUser(ctx context.Context, userID types.UserID, email string) (*model.User, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "user ID is required")
	}

	user, err := uc.repo.User().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, userID))
	}

	now := uc.clock().UTC()
	switch {
	case user == nil:
		user = &model.User{
			ID:        userID,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
	case email != "" && user.Email != email:
		user.Email = email
		user.UpdatedAt = now
	default:
		return user, nil
	}

	if err := uc.repo.User().Put(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user", goerr.V(UserIDKey, userID))
	}
	return user, nil
}

// Get returns the user or ErrUserNotFound
func (uc *UserUseCase) Get(ctx context.Context, userID types.UserID) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(UserIDKey, userID))
	}
	if user == nil {
		return nil, goerr.Wrap(ErrUserNotFound, "user not found", goerr.V(UserIDKey, userID))
	}
	return user, nil
}

// SetSlackUserID links a Slack member to the user. A member can be linked to
// one user only; an empty ID unlinks.
func (uc *UserUseCase) SetSlackUserID(ctx context.Context, userID types.UserID, slackUserID types.SlackUserID) (*model.User, error) {
	slackUserID = types.SlackUserID(strings.TrimSpace(slackUserID.String()))
	if slackUserID != "" {
		if err := slackUserID.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V("slack_user_id", slackUserID))
		}

		owner, err := uc.repo.User().GetBySlackUserID(ctx, slackUserID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up slack user", goerr.V("slack_user_id", slackUserID))
		}
		if owner != nil && owner.ID != userID {
			return nil, goerr.Wrap(ErrSlackUserIDInUse, "slack user ID is already linked",
				goerr.V("slack_user_id", slackUserID), goerr.V(UserIDKey, userID))
		}
	}

	user, err := uc.EnsureUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if user.SlackUserID == slackUserID {
		return user, nil
	}

	user.SlackUserID = slackUserID
	user.UpdatedAt = uc.clock().UTC()
	if err := uc.repo.User().Put(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrSlackUserIDInUse, "slack user ID is already linked",
				goerr.V("slack_user_id", slackUserID), goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to save user", goerr.V(UserIDKey, userID))
	}

	logging.From(ctx).Info("slack user linked", "user_id", userID, "slack_user_id", slackUserID)
	return user, nil
}
