package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Strob0t/AgentForge/internal/adapter/anthropic"
	"github.com/Strob0t/AgentForge/internal/adapter/litellm"
	"github.com/Strob0t/AgentForge/internal/adapter/openai"
	"github.com/Strob0t/AgentForge/internal/config"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
	"github.com/Strob0t/AgentForge/internal/resilience"
)

// newGenerator builds the configured text-generation provider behind a
// circuit breaker. It returns nil when delegation is disabled.
func newGenerator(ctx context.Context, cfg *config.Config) (textgen.Generator, error) {
	d := cfg.Delegation
	if d.Provider == "" || d.Provider == config.ProviderNone {
		return nil, nil
	}

	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	breaker.OnStateChange(func(from, to resilience.State) {
		slog.Warn("circuit breaker state changed", "provider", d.Provider, "from", from, "to", to)
	})

	switch d.Provider {
	case config.ProviderLiteLLM:
		c := litellm.NewClient(cfg.LiteLLM.URL, cfg.LiteLLM.MasterKey, d.Model)
		c.SetDefaults(d.MaxTokens, d.Temperature)
		c.SetBreaker(breaker)
		if err := c.Health(ctx); err != nil {
			slog.Warn("litellm not reachable, replies fall back to local", "url", cfg.LiteLLM.URL, "error", err)
		}
		return c, nil

	case config.ProviderAnthropic:
		c, err := anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.Anthropic.APIKey,
			BaseURL:     cfg.Anthropic.BaseURL,
			Model:       d.Model,
			MaxTokens:   d.MaxTokens,
			Temperature: d.Temperature,
		})
		if err != nil {
			return nil, err
		}
		c.SetBreaker(breaker)
		return c, nil

	case config.ProviderOpenAI:
		c, err := openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       d.Model,
			MaxTokens:   d.MaxTokens,
			Temperature: d.Temperature,
		})
		if err != nil {
			return nil, err
		}
		c.SetBreaker(breaker)
		return c, nil
	}
	return nil, fmt.Errorf("unknown provider %q", d.Provider)
}
