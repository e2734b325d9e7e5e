// Package openai implements the text-generation port with the OpenAI Responses API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
	"github.com/Strob0t/AgentForge/internal/resilience"
)

// ErrEmptyOutput is returned when a response carries no output text.
var ErrEmptyOutput = errors.New("openai: response has no output text")

// Config configures the client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client generates text with OpenAI models.
type Client struct {
	client  openai.Client
	cfg     Config
	breaker *resilience.Breaker
}

// NewClient creates a client with retries disabled.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{client: openai.NewClient(opts...), cfg: cfg}, nil
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Name implements textgen.Named.
func (c *Client) Name() string { return "openai" }

// Generate implements textgen.Generator.
func (c *Client) Generate(ctx context.Context, req textgen.Request) (string, error) {
	params := c.buildParams(req)

	var (
		out    string
		status responses.ResponseStatus
	)
	call := func(ctx context.Context) error {
		resp, err := c.client.Responses.New(ctx, params)
		if err != nil {
			return fmt.Errorf("openai generate: %w", err)
		}
		status = resp.Status
		out = resp.OutputText()
		if out == "" {
			return ErrEmptyOutput
		}
		return nil
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
	if status == responses.ResponseStatusIncomplete {
		return "", fmt.Errorf("openai: response status %q: %w", status, textgen.ErrTruncated)
	}
	return out, nil
}

func (c *Client) buildParams(req textgen.Request) responses.ResponseNewParams {
	items := make(responses.ResponseInputParam, 0, len(req.History)+2)
	if req.System != "" {
		items = append(items, responses.ResponseInputItemParamOfMessage(req.System, responses.EasyInputMessageRoleSystem))
	}
	for _, t := range req.History {
		role := responses.EasyInputMessageRoleUser
		if t.Role == agent.RoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(t.Content, role))
	}
	items = append(items, responses.ResponseInputItemParamOfMessage(req.User, responses.EasyInputMessageRoleUser))

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.cfg.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	}

	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(maxTokens))
	}
	switch {
	case req.Temperature != 0:
		params.Temperature = openai.Float(req.Temperature)
	case c.cfg.Temperature > 0:
		params.Temperature = openai.Float(c.cfg.Temperature)
	}
	return params
}
