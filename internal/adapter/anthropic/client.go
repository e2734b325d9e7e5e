// Package anthropic implements the text-generation port with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
	"github.com/Strob0t/AgentForge/internal/resilience"
)

const defaultMaxTokens = 4096

// ErrEmptyContent is returned when a response carries no text blocks.
var ErrEmptyContent = errors.New("anthropic: response has no text content")

// Config configures the client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client generates text with Claude models.
type Client struct {
	client  anthropic.Client
	cfg     Config
	breaker *resilience.Breaker
}

// NewClient creates a client. Retries are disabled: delegation is a single
// best-effort call with a local fallback.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{client: anthropic.NewClient(opts...), cfg: cfg}, nil
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Name implements textgen.Named.
func (c *Client) Name() string { return "anthropic" }

// Generate implements textgen.Generator.
func (c *Client) Generate(ctx context.Context, req textgen.Request) (string, error) {
	params := c.buildParams(req)

	var (
		out  string
		stop anthropic.StopReason
	)
	call := func(ctx context.Context) error {
		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return fmt.Errorf("anthropic generate: %w", err)
		}
		stop = msg.StopReason
		out, err = textOf(msg)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	// A token-limit stop is a healthy provider answer, so it is checked
	// outside the breaker.
	if stop == anthropic.StopReasonMaxTokens {
		return "", fmt.Errorf("anthropic: stop_reason %q: %w", stop, textgen.ErrTruncated)
	}
	return out, nil
}

func (c *Client) buildParams(req textgen.Request) anthropic.MessageNewParams {
	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, t := range req.History {
		if t.Role == agent.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	switch {
	case req.Temperature != 0:
		params.Temperature = anthropic.Float(req.Temperature)
	case c.cfg.Temperature > 0:
		params.Temperature = anthropic.Float(c.cfg.Temperature)
	}
	return params
}

func textOf(msg *anthropic.Message) (string, error) {
	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyContent
	}
	return b.String(), nil
}
