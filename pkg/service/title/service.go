package title

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

// DefaultTimeout bounds one title generation call
const DefaultTimeout = 15 * time.Second

// Message text beyond this many runes is cut before prompting
const maxInputRunes = 4000

const systemPrompt = `You turn chat messages into todo titles.
Reply with a single imperative sentence of at most 80 characters that states the action to take.
Use the same language as the message. Do not add quotes, prefixes, or trailing punctuation.`

type generateFunc func(ctx context.Context, prompt string) (string, error)

type client struct {
	generate generateFunc
	timeout  time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// New creates a title service backed by llmClient
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	return newClient(func(ctx context.Context, prompt string) (string, error) {
		session, err := llmClient.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
		if err != nil {
			return "", goerr.Wrap(err, "failed to create LLM session")
		}

		resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate content from LLM")
		}
		if len(resp.Texts) == 0 {
			return "", goerr.New("LLM returned no text")
		}
		return strings.Join(resp.Texts, ""), nil
	}, opts...), nil
}

func newClient(fn generateFunc, opts ...Option) *client {
	c := &client{
		generate: fn,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) GenerateTitle(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", goerr.New("message text is empty")
	}
	if r := []rune(text); len(r) > maxInputRunes {
		text = string(r[:maxInputRunes])
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.generate(ctx, text)
	if err != nil {
		return "", err
	}

	title := cleanTitle(raw)
	if title == "" {
		return "", goerr.New("LLM returned an empty title", goerr.V("raw", raw))
	}
	return title, nil
}

// cleanTitle keeps the first non-empty line and strips decoration models tend
// to add
func cleanTitle(raw string) string {
	var line string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}

	line = strings.TrimPrefix(line, "Title:")
	line = strings.TrimSpace(line)
	line = strings.TrimRight(line, ".。")
	line = strings.Trim(line, "\"'`*「」")
	line = strings.TrimRight(line, ".。")
	return model.TruncateTitle(strings.TrimSpace(line))
}
