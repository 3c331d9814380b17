package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// webhookSecretBytes is the entropy of a generated webhook secret
const webhookSecretBytes = 32

// SlackWebhook is the inbound endpoint identity of one (user, connection) pair.
// WebhookID is public and embedded in the URL; Secret is never exposed.
type SlackWebhook struct {
	ID                types.SlackWebhookID
	UserID            types.UserID
	SlackConnectionID types.SlackConnectionID
	WebhookID         types.WebhookID
	Secret            string `masq:"secret"`
	IsActive          bool
	LastEventAt       *time.Time
	EventCount        int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSlackWebhook creates an active webhook with a fresh identity
func NewSlackWebhook(userID types.UserID, connectionID types.SlackConnectionID, now time.Time) (*SlackWebhook, error) {
	secret, err := generateWebhookSecret()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &SlackWebhook{
		ID:                types.NewSlackWebhookID(),
		UserID:            userID,
		SlackConnectionID: connectionID,
		WebhookID:         types.NewWebhookID(),
		Secret:            secret,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func generateWebhookSecret() (string, error) {
	buf := make([]byte, webhookSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerr.Wrap(err, "failed to generate webhook secret")
	}
	return hex.EncodeToString(buf), nil
}

// WithActive returns a copy of the webhook with IsActive set
func (w SlackWebhook) WithActive(active bool, now time.Time) SlackWebhook {
	w.IsActive = active
	w.UpdatedAt = now.UTC()
	return w
}

// WithEventRecorded returns a copy of the webhook after one more processed event
func (w SlackWebhook) WithEventRecorded(at time.Time) SlackWebhook {
	at = at.UTC()
	w.EventCount++
	w.LastEventAt = &at
	w.UpdatedAt = at
	return w
}

// OwnedBy reports whether the webhook belongs to userID
func (w *SlackWebhook) OwnedBy(userID types.UserID) bool {
	return w != nil && w.UserID == userID
}

// URL builds the public inbound URL. Only WebhookID is embedded.
func (w *SlackWebhook) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/webhooks/slack/events/" + w.WebhookID.String()
}
