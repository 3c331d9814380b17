package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	users  *UserUseCase
	userID types.UserID
	email  string
}

// NewNoAuthnUseCase creates a NoAuthnUseCase acting as userID
func NewNoAuthnUseCase(repo interfaces.Repository, userID types.UserID, email string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		users:  NewUserUseCase(repo, time.Now),
		userID: userID,
		email:  email,
	}
}

// Authenticate ignores the token and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (*model.User, error) {
	return uc.users.EnsureUser(ctx, uc.userID, uc.email)
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
