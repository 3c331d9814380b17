package interfaces

// Repository defines the interface for data persistence. Lookup methods return
// (nil, nil) when the record does not exist.
type Repository interface {
	User() UserRepository
	SlackConnection() SlackConnectionRepository
	SlackWebhook() SlackWebhookRepository
	ProcessedEvent() ProcessedEventRepository
	Todo() TodoRepository
	EmojiSettings() EmojiSettingsRepository

	Close() error
}
