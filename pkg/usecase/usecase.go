package usecase

import (
	"math/rand/v2"
	"time"

	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/service/notify"
	"github.com/secmon-lab/quadrant/pkg/service/slack"
	"github.com/secmon-lab/quadrant/pkg/service/title"
)

type UseCases struct {
	repo          interfaces.Repository
	slackService  slack.Service
	titleService  title.Service
	notifier      notify.Notifier
	baseURL       string
	defaultEmoji  model.EmojiSettings
	clock         func() time.Time
	random        func() float64
	Reaction      *ReactionUseCase
	Webhook       *WebhookUseCase
	Connection    *ConnectionUseCase
	Todo          *TodoUseCase
	EmojiSettings *EmojiSettingsUseCase
	User          *UserUseCase
	Auth          AuthUseCaseInterface
}

type Option func(*UseCases)

func WithSlackService(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

func WithTitleService(svc title.Service) Option {
	return func(uc *UseCases) {
		uc.titleService = svc
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithBaseURL sets the public base URL used to build webhook URLs
func WithBaseURL(baseURL string) Option {
	return func(uc *UseCases) {
		uc.baseURL = baseURL
	}
}

// WithDefaultEmoji overrides the mapping used for users without emoji settings
func WithDefaultEmoji(settings model.EmojiSettings) Option {
	return func(uc *UseCases) {
		uc.defaultEmoji = settings.Normalized()
	}
}

func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithRandom replaces the source used for initial importance scores. fn must
// return a value in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(uc *UseCases) {
		uc.random = fn
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		defaultEmoji: model.DefaultEmojiSettings(),
		clock:        time.Now,
		random:       rand.Float64,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Todo = NewTodoUseCase(repo, uc.clock, uc.random)
	uc.EmojiSettings = NewEmojiSettingsUseCase(repo, uc.defaultEmoji, uc.clock)
	uc.User = NewUserUseCase(repo, uc.clock)
	uc.Webhook = NewWebhookUseCase(repo, uc.baseURL, uc.clock)
	uc.Connection = NewConnectionUseCase(repo, uc.slackService, uc.Webhook, uc.clock)
	uc.Reaction = NewReactionUseCase(repo, uc.slackService, uc.titleService, uc.notifier, uc.Todo, uc.defaultEmoji, uc.clock)

	return uc
}
