package memory

import (
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-process backend. It is used for development and as the
// reference behavior for the shared repository test suite.
type Memory struct {
	user            *userRepository
	slackConnection *slackConnectionRepository
	slackWebhook    *slackWebhookRepository
	processedEvent  *processedEventRepository
	todo            *todoRepository
	emojiSettings   *emojiSettingsRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user:            newUserRepository(),
		slackConnection: newSlackConnectionRepository(),
		slackWebhook:    newSlackWebhookRepository(),
		processedEvent:  newProcessedEventRepository(),
		todo:            newTodoRepository(),
		emojiSettings:   newEmojiSettingsRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) SlackConnection() interfaces.SlackConnectionRepository {
	return m.slackConnection
}

func (m *Memory) SlackWebhook() interfaces.SlackWebhookRepository {
	return m.slackWebhook
}

func (m *Memory) ProcessedEvent() interfaces.ProcessedEventRepository {
	return m.processedEvent
}

func (m *Memory) Todo() interfaces.TodoRepository {
	return m.todo
}

func (m *Memory) EmojiSettings() interfaces.EmojiSettingsRepository {
	return m.emojiSettings
}

func (m *Memory) Close() error {
	return nil
}
