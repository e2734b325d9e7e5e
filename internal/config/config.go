// Package config provides hierarchical configuration loading for AgentForge.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the AgentForge service.
type Config struct {
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
	Delegation Delegation `yaml:"delegation"`
	LiteLLM    LiteLLM    `yaml:"litellm"`
	Anthropic  Anthropic  `yaml:"anthropic"`
	OpenAI     OpenAI     `yaml:"openai"`
	Breaker    Breaker    `yaml:"breaker"`
	Cache      Cache      `yaml:"cache"`
	NATS       NATS       `yaml:"nats"`
	MCP        MCP        `yaml:"mcp"`
	OTEL       OTEL       `yaml:"otel"`
	Chat       Chat       `yaml:"chat"`
	Codegen    Codegen    `yaml:"codegen"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port         string `yaml:"port"`
	CORSOrigin   string `yaml:"cors_origin"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Provider names accepted by Delegation.Provider.
const (
	ProviderNone      = "none"
	ProviderLiteLLM   = "litellm"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Delegation configures the optional external text-generation capability.
type Delegation struct {
	Provider    string        `yaml:"provider"` // none | litellm | anthropic | openai
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	CacheTTL    time.Duration `yaml:"cache_ttl"` // 0 disables caching of external output
}

// LiteLLM holds LiteLLM proxy configuration.
type LiteLLM struct {
	URL       string `yaml:"url"`
	MasterKey string `yaml:"master_key"`
}

// Anthropic holds Anthropic API configuration.
type Anthropic struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// OpenAI holds OpenAI API configuration.
type OpenAI struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Breaker holds circuit breaker configuration.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Cache holds the external-output cache configuration.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"`
	L2Bucket    string        `yaml:"l2_bucket"` // NATS KV bucket; used only when nats.url is set
	L2TTL       time.Duration `yaml:"l2_ttl"`
}

// NATS holds NATS JetStream configuration. Empty URL disables events and L2 cache.
type NATS struct {
	URL string `yaml:"url"`
}

// MCP holds MCP server configuration. Empty Addr disables the server.
type MCP struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"` // empty disables auth
}

// OTEL holds OpenTelemetry exporter configuration. Empty Endpoint disables export.
type OTEL struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Chat holds chat session configuration.
type Chat struct {
	HistoryWindow int `yaml:"history_window"`
}

// Codegen holds synthesis defaults applied when a request names none.
type Codegen struct {
	DefaultVariant  string `yaml:"default_variant"`
	DefaultEscaping string `yaml:"default_escaping"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:         "8080",
			CORSOrigin:   "http://localhost:3000",
			MaxBodyBytes: 1 << 20,
		},
		Logging: Logging{
			Level:   "info",
			Service: "agentforge",
		},
		Delegation: Delegation{
			Provider:    ProviderNone,
			Model:       "gpt-4o-mini",
			Timeout:     30 * time.Second,
			MaxTokens:   4096,
			Temperature: 0.7,
			CacheTTL:    time.Hour,
		},
		LiteLLM: LiteLLM{
			URL: "http://localhost:4000",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Cache: Cache{
			L1MaxSizeMB: 64,
			L2Bucket:    "AGENTFORGE_OUTPUT",
			L2TTL:       24 * time.Hour,
		},
		OTEL: OTEL{
			ServiceName: "agentforge",
			Insecure:    true,
		},
		Chat: Chat{
			HistoryWindow: 10,
		},
		Codegen: Codegen{
			DefaultVariant:  "classic",
			DefaultEscaping: "contextual",
		},
	}
}
