package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Strob0t/AgentForge/internal/config"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
)

func testConfig(provider string) *config.Config {
	cfg := config.Defaults()
	cfg.Delegation.Provider = provider
	return &cfg
}

func TestNewGeneratorNone(t *testing.T) {
	gen, err := newGenerator(context.Background(), testConfig(config.ProviderNone))
	if err != nil || gen != nil {
		t.Fatalf("expected nil generator, got %v, %v", gen, err)
	}
}

func TestNewGeneratorProviders(t *testing.T) {
	health := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer health.Close()

	tests := []struct {
		provider string
		setup    func(*config.Config)
	}{
		{config.ProviderLiteLLM, func(c *config.Config) { c.LiteLLM.URL = health.URL }},
		{config.ProviderAnthropic, func(c *config.Config) { c.Anthropic.APIKey = "sk-ant-test" }},
		{config.ProviderOpenAI, func(c *config.Config) { c.OpenAI.APIKey = "sk-test" }},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := testConfig(tt.provider)
			tt.setup(cfg)
			gen, err := newGenerator(context.Background(), cfg)
			if err != nil {
				t.Fatalf("newGenerator: %v", err)
			}
			named, ok := gen.(textgen.Named)
			if !ok || named.Name() != tt.provider {
				t.Fatalf("provider name = %v", gen)
			}
		})
	}
}

func TestNewGeneratorMissingKey(t *testing.T) {
	for _, p := range []string{config.ProviderAnthropic, config.ProviderOpenAI} {
		if _, err := newGenerator(context.Background(), testConfig(p)); err == nil {
			t.Errorf("%s: expected error without api key", p)
		}
	}
}

func TestNewAppLocal(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(config.ProviderNone), nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.delegator.Enabled() || a.queue != nil {
		t.Fatal("expected local-only app")
	}
	reply := a.chat.Reply(context.Background(), "schedule a meeting", nil)
	if reply.Source != "local" {
		t.Fatalf("source = %q", reply.Source)
	}
}

func TestNewAppWithCache(t *testing.T) {
	cfg := testConfig(config.ProviderOpenAI)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Delegation.Timeout = time.Second
	a, err := newApp(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()
	if !a.delegator.Enabled() || a.delegator.Provider() != "openai" {
		t.Fatalf("provider = %q", a.delegator.Provider())
	}
}
