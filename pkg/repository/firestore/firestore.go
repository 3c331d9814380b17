package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
)

// Collection names without prefix. `quadrant migrate` creates indexes for the
// same names.
const (
	CollectionUsers            = "users"
	CollectionSlackConnections = "slack_connections"
	CollectionSlackWebhooks    = "slack_webhooks"
	CollectionProcessedEvents  = "processed_events"
	CollectionTodos            = "todos"
	CollectionEmojiSettings    = "emoji_settings"
	CollectionSlackUserLinks   = "slack_user_links"
)

type Firestore struct {
	client          *firestore.Client
	user            *userRepository
	slackConnection *slackConnectionRepository
	slackWebhook    *slackWebhookRepository
	processedEvent  *processedEventRepository
	todo            *todoRepository
	emojiSettings   *emojiSettingsRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends prefix + "_" to every collection name
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		for _, b := range f.bases() {
			b.prefix = prefix
		}
	}
}

// New creates a Firestore backed repository. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:          client,
		user:            &userRepository{base{client: client}},
		slackConnection: &slackConnectionRepository{base{client: client}},
		slackWebhook:    &slackWebhookRepository{base{client: client}},
		processedEvent:  &processedEventRepository{base{client: client}},
		todo:            &todoRepository{base{client: client}},
		emojiSettings:   &emojiSettingsRepository{base{client: client}},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) bases() []*base {
	return []*base{
		&f.user.base,
		&f.slackConnection.base,
		&f.slackWebhook.base,
		&f.processedEvent.base,
		&f.todo.base,
		&f.emojiSettings.base,
	}
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) SlackConnection() interfaces.SlackConnectionRepository {
	return f.slackConnection
}

func (f *Firestore) SlackWebhook() interfaces.SlackWebhookRepository {
	return f.slackWebhook
}

func (f *Firestore) ProcessedEvent() interfaces.ProcessedEventRepository {
	return f.processedEvent
}

func (f *Firestore) Todo() interfaces.TodoRepository {
	return f.todo
}

func (f *Firestore) EmojiSettings() interfaces.EmojiSettingsRepository {
	return f.emojiSettings
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

type base struct {
	client *firestore.Client
	prefix string
}

func (b *base) collection(name string) *firestore.CollectionRef {
	if b.prefix != "" {
		return b.client.Collection(b.prefix + "_" + name)
	}
	return b.client.Collection(name)
}
