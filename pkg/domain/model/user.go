package model

import (
	"time"

	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// User is an application user. SlackUserID links the account to the Slack
// member allowed to create todos through the user's webhooks.
type User struct {
	ID          types.UserID
	Email       string
	SlackUserID types.SlackUserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSlackUserID reports whether a Slack member is linked to the user
func (u *User) HasSlackUserID() bool {
	return u != nil && u.SlackUserID != ""
}
