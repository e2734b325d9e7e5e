package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/AgentForge/internal/domain/codegen"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "agentforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("AGENTFORGE_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config. Where both a
// vendor variable and an AGENTFORGE_ variable exist, the latter wins.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "AGENTFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "AGENTFORGE_CORS_ORIGIN")
	setInt64(&cfg.Server.MaxBodyBytes, "AGENTFORGE_MAX_BODY_BYTES")

	setString(&cfg.Logging.Level, "AGENTFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "AGENTFORGE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "AGENTFORGE_LOG_ASYNC")

	setString(&cfg.Delegation.Provider, "AGENTFORGE_PROVIDER")
	setString(&cfg.Delegation.Model, "AGENTFORGE_MODEL")
	setDuration(&cfg.Delegation.Timeout, "AGENTFORGE_DELEGATION_TIMEOUT")
	setInt(&cfg.Delegation.MaxTokens, "AGENTFORGE_MAX_TOKENS")
	setFloat64(&cfg.Delegation.Temperature, "AGENTFORGE_TEMPERATURE")
	setDuration(&cfg.Delegation.CacheTTL, "AGENTFORGE_CACHE_TTL")

	setString(&cfg.LiteLLM.URL, "LITELLM_URL")
	setString(&cfg.LiteLLM.URL, "AGENTFORGE_LITELLM_URL")
	setString(&cfg.LiteLLM.MasterKey, "LITELLM_MASTER_KEY")
	setString(&cfg.LiteLLM.MasterKey, "AGENTFORGE_LITELLM_MASTER_KEY")

	setString(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.APIKey, "AGENTFORGE_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.BaseURL, "AGENTFORGE_ANTHROPIC_BASE_URL")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.APIKey, "AGENTFORGE_OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "AGENTFORGE_OPENAI_BASE_URL")

	setInt(&cfg.Breaker.MaxFailures, "AGENTFORGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "AGENTFORGE_BREAKER_TIMEOUT")

	setInt64(&cfg.Cache.L1MaxSizeMB, "AGENTFORGE_CACHE_L1_MAX_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "AGENTFORGE_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "AGENTFORGE_CACHE_L2_TTL")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.URL, "AGENTFORGE_NATS_URL")

	setString(&cfg.MCP.Addr, "AGENTFORGE_MCP_ADDR")
	setString(&cfg.MCP.APIKey, "AGENTFORGE_MCP_API_KEY")

	setString(&cfg.OTEL.Endpoint, "AGENTFORGE_OTEL_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "AGENTFORGE_OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "AGENTFORGE_OTEL_INSECURE")

	setInt(&cfg.Chat.HistoryWindow, "AGENTFORGE_CHAT_HISTORY_WINDOW")

	setString(&cfg.Codegen.DefaultVariant, "AGENTFORGE_DEFAULT_VARIANT")
	setString(&cfg.Codegen.DefaultEscaping, "AGENTFORGE_DEFAULT_ESCAPING")
}

// validate checks that required fields are set and enums are known.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.MaxBodyBytes < 1 {
		return errors.New("server.max_body_bytes must be >= 1")
	}
	switch cfg.Delegation.Provider {
	case ProviderNone, ProviderLiteLLM, ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("delegation.provider %q is not one of none, litellm, anthropic, openai", cfg.Delegation.Provider)
	}
	if cfg.Delegation.Provider != ProviderNone && cfg.Delegation.Model == "" {
		return errors.New("delegation.model is required when a provider is set")
	}
	if cfg.Delegation.Timeout <= 0 {
		return errors.New("delegation.timeout must be > 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Chat.HistoryWindow < 0 {
		return errors.New("chat.history_window must be >= 0")
	}
	if _, err := codegen.ParseVariant(cfg.Codegen.DefaultVariant); err != nil {
		return fmt.Errorf("codegen.default_variant: %w", err)
	}
	if _, err := codegen.ParseEscaping(cfg.Codegen.DefaultEscaping); err != nil {
		return fmt.Errorf("codegen.default_escaping: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
