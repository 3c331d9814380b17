package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	slackmodel "github.com/secmon-lab/quadrant/pkg/domain/model/slack"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/service/notify"
	"github.com/secmon-lab/quadrant/pkg/service/slack"
	"github.com/secmon-lab/quadrant/pkg/service/title"
	"github.com/secmon-lab/quadrant/pkg/utils/async"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Outcome messages of ProcessReaction
const (
	ResultTaskCreated        = "Task created"
	ResultAlreadyProcessed   = "Event already processed"
	ResultNotOwner           = "Reaction ignored, only the webhook owner can create tasks"
	ResultEmojiNotMapped     = "Emoji not mapped to a task urgency"
	ResultSlackUserNotLinked = "Slack user not linked"
	ResultMessageNotFound    = "Message not found"
)

// ReactionResult is the outcome of one processed reaction. TodoID is set when
// a todo was created, ExistingTodoID when the event had been handled before.
type ReactionResult struct {
	Message        string
	TodoID         types.TodoID
	ExistingTodoID types.TodoID
}

// AcceptResponse is what the events endpoint answers to Slack. Challenge is
// set only for URL verification requests.
type AcceptResponse struct {
	Challenge string
}

type ReactionUseCase struct {
	repo     interfaces.Repository
	slack    slack.Service
	title    title.Service
	notifier notify.Notifier
	todos    *TodoUseCase
	dedup    *Deduplicator
	defaults model.EmojiSettings
	clock    func() time.Time
}

func NewReactionUseCase(
	repo interfaces.Repository,
	slackService slack.Service,
	titleService title.Service,
	notifier notify.Notifier,
	todos *TodoUseCase,
	defaults model.EmojiSettings,
	clock func() time.Time,
) *ReactionUseCase {
	return &ReactionUseCase{
		repo:     repo,
		slack:    slackService,
		title:    titleService,
		notifier: notifier,
		todos:    todos,
		dedup:    NewDeduplicator(repo),
		defaults: defaults,
		clock:    clock,
	}
}

// Accept handles a verified Events API request addressed to webhookID. The
// cheap gates run before responding; the rest of the pipeline runs in the
// background so Slack gets its answer within its 3 second deadline.
func (uc *ReactionUseCase) Accept(ctx context.Context, webhookID types.WebhookID, payload slackmodel.Payload) (*AcceptResponse, error) {
	if challenge, ok := payload.(*slackmodel.ChallengeRequest); ok {
		return &AcceptResponse{Challenge: challenge.Challenge}, nil
	}

	webhook, err := uc.repo.SlackWebhook().GetByWebhookID(ctx, webhookID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get webhook", goerr.V(WebhookIDKey, webhookID))
	}
	if webhook == nil || !webhook.IsActive {
		return nil, goerr.Wrap(ErrWebhookNotFound, "no active webhook", goerr.V(WebhookIDKey, webhookID))
	}

	logger := logging.From(ctx).With("webhook_id", webhookID)

	switch p := payload.(type) {
	case *slackmodel.UnsupportedPayload:
		logger.Debug("unsupported slack payload ignored", "type", p.Type)
		return &AcceptResponse{}, nil

	case *slackmodel.EventCallback:
		if p.Reaction == nil {
			logger.Debug("slack event ignored", "event_type", p.EventType, "event_id", p.EventID)
			return &AcceptResponse{}, nil
		}

		owner, settings, err := uc.loadOwner(ctx, webhook.UserID)
		if err != nil {
			return nil, err
		}
		if !owner.HasSlackUserID() {
			return nil, goerr.Wrap(ErrSlackUserNotConfigured, "webhook owner has no slack user ID",
				goerr.V(WebhookIDKey, webhookID), goerr.V(UserIDKey, webhook.UserID))
		}
		if _, ok := model.ResolveUrgency(p.Reaction.Reaction, settings, uc.defaults); !ok {
			logger.Debug("reaction emoji not mapped", "reaction", p.Reaction.Reaction)
			return &AcceptResponse{}, nil
		}

		wh := *webhook
		event := *p.Reaction
		async.Dispatch(ctx, func(ctx context.Context) error {
			result, err := uc.ProcessReaction(ctx, &wh, &event)
			if err != nil {
				return err
			}
			logging.From(ctx).Info("reaction processed",
				"webhook_id", wh.WebhookID,
				"result", result.Message,
				"todo_id", result.TodoID,
				"existing_todo_id", result.ExistingTodoID,
			)
			return nil
		})
		return &AcceptResponse{}, nil

	default:
		return nil, goerr.New("unknown slack payload", goerr.V(WebhookIDKey, webhookID))
	}
}

func (uc *ReactionUseCase) loadOwner(ctx context.Context, userID types.UserID) (*model.User, *model.EmojiSettings, error) {
	var (
		owner    *model.User
		settings *model.EmojiSettings
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		if owner, err = uc.repo.User().Get(egCtx, userID); err != nil {
			return goerr.Wrap(err, "failed to get webhook owner", goerr.V(UserIDKey, userID))
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if settings, err = uc.repo.EmojiSettings().Get(egCtx, userID); err != nil {
			return goerr.Wrap(err, "failed to get emoji settings", goerr.V(UserIDKey, userID))
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return owner, settings, nil
}

// ProcessReaction turns a reaction on a Slack message into a todo owned by the
// webhook's user. Gates that reject the event return a result with a message
// and no error.
func (uc *ReactionUseCase) ProcessReaction(ctx context.Context, webhook *model.SlackWebhook, event *slackmodel.ReactionEvent) (*ReactionResult, error) {
	logger := logging.From(ctx).With(
		"webhook_id", webhook.WebhookID,
		"channel_id", event.ChannelID,
		"message_ts", event.MessageTS,
		"reaction", event.Reaction,
	)

	var (
		owner    *model.User
		reactor  *model.User
		conn     *model.SlackConnection
		settings *model.EmojiSettings
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		owner, settings, err = uc.loadOwner(egCtx, webhook.UserID)
		return err
	})
	eg.Go(func() error {
		var err error
		if reactor, err = uc.repo.User().GetBySlackUserID(egCtx, event.User); err != nil {
			return goerr.Wrap(err, "failed to resolve slack user", goerr.V("slack_user_id", event.User))
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if conn, err = uc.repo.SlackConnection().Get(egCtx, webhook.SlackConnectionID); err != nil {
			return goerr.Wrap(err, "failed to get slack connection", goerr.V(ConnectionIDKey, webhook.SlackConnectionID))
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if !owner.HasSlackUserID() {
		return nil, goerr.Wrap(ErrSlackUserNotConfigured, "webhook owner has no slack user ID",
			goerr.V(WebhookIDKey, webhook.WebhookID), goerr.V(UserIDKey, webhook.UserID))
	}
	if reactor == nil {
		logger.Info("reaction from unlinked slack user ignored", "slack_user_id", event.User)
		return &ReactionResult{Message: ResultSlackUserNotLinked}, nil
	}
	if reactor.ID != owner.ID || event.User != owner.SlackUserID {
		logger.Info("reaction from non-owner ignored", "slack_user_id", event.User, "owner_id", owner.ID)
		return &ReactionResult{Message: ResultNotOwner}, nil
	}

	urgency, ok := model.ResolveUrgency(event.Reaction, settings, uc.defaults)
	if !ok {
		logger.Debug("reaction emoji not mapped")
		return &ReactionResult{Message: ResultEmojiNotMapped}, nil
	}

	eventKey := event.EventKey()
	isNew, existingID, err := uc.dedup.Check(ctx, eventKey)
	if err != nil {
		return nil, err
	}
	if !isNew {
		logger.Info("duplicate reaction event", "existing_todo_id", existingID)
		return &ReactionResult{Message: ResultAlreadyProcessed, ExistingTodoID: existingID}, nil
	}

	if conn == nil || !conn.OwnedBy(owner.ID) {
		return nil, goerr.Wrap(ErrConnectionNotFound, "webhook points to a missing connection",
			goerr.V(WebhookIDKey, webhook.WebhookID), goerr.V(ConnectionIDKey, webhook.SlackConnectionID))
	}
	if uc.slack == nil {
		return nil, goerr.Wrap(ErrSlackNotConfigured, "cannot fetch reacted message")
	}

	msg, err := uc.slack.GetMessage(ctx, conn.AccessToken, event.ChannelID, event.MessageTS)
	if err != nil {
		logger.Warn("failed to fetch reacted message", "error", err)
		return &ReactionResult{Message: ResultMessageNotFound}, nil
	}
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		logger.Info("reacted message has no text")
		return &ReactionResult{Message: ResultMessageNotFound}, nil
	}

	now := uc.clock()
	todo, err := uc.todos.create(ctx, owner.ID, TodoInput{
		Title:    uc.generateTitle(ctx, msg.Text, event.Reaction),
		Body:     msg.Text,
		Deadline: model.UrgencyToDeadline(urgency, now),
	}, types.CreatedViaSlackWebhook)
	if err != nil {
		return nil, err
	}

	recorded, err := uc.dedup.Record(ctx, &model.ProcessedEvent{
		EventKey:    eventKey,
		UserID:      owner.ID,
		ChannelID:   event.ChannelID,
		MessageTS:   event.MessageTS,
		Reaction:    event.Reaction,
		TodoID:      todo.ID,
		ProcessedAt: now.UTC(),
	})
	switch {
	case err != nil:
		logger.Warn("failed to record processed event", "error", err, "todo_id", todo.ID)
	case !recorded:
		return uc.yieldToWinner(ctx, todo, eventKey)
	}

	if _, err := uc.repo.SlackWebhook().RecordEvent(ctx, webhook.WebhookID, now); err != nil {
		logger.Warn("failed to record webhook event", "error", err)
	}

	if uc.notifier != nil {
		if err := uc.notifier.TodoCreated(ctx, todo); err != nil {
			logger.Warn("failed to publish todo notification", "error", err, "todo_id", todo.ID)
		}
	}

	return &ReactionResult{Message: ResultTaskCreated, TodoID: todo.ID}, nil
}

// yieldToWinner removes a todo created by a delivery that lost the ledger
// insert to a concurrent delivery of the same event
func (uc *ReactionUseCase) yieldToWinner(ctx context.Context, todo *model.Todo, eventKey string) (*ReactionResult, error) {
	logger := logging.From(ctx)

	if err := uc.repo.Todo().Delete(ctx, todo.UserID, todo.ID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		logger.Warn("failed to remove duplicate todo", "error", err, "todo_id", todo.ID)
	}

	winner, err := uc.repo.ProcessedEvent().GetByKey(ctx, eventKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get processed event", goerr.V("event_key", eventKey))
	}

	result := &ReactionResult{Message: ResultAlreadyProcessed}
	if winner != nil {
		result.ExistingTodoID = winner.TodoID
	}
	logger.Info("concurrent delivery won the event", "existing_todo_id", result.ExistingTodoID, "discarded_todo_id", todo.ID)
	return result, nil
}

func (uc *ReactionUseCase) generateTitle(ctx context.Context, text, reaction string) string {
	fallback := "Slack reaction: " + reaction
	if uc.title == nil {
		return fallback
	}

	generated, err := uc.title.GenerateTitle(ctx, text)
	if err != nil {
		logging.From(ctx).Warn("title generation failed, using fallback", "error", err)
		return fallback
	}
	if generated = strings.TrimSpace(generated); generated == "" {
		return fallback
	}
	return model.TruncateTitle(generated)
}
