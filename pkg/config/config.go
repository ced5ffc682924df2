package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for cicerone-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, Redis password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Catalog scraping configuration
	Catalog CatalogConfig `yaml:"catalog"`

	// Session storage configuration
	Session SessionConfig `yaml:"session"`

	// LLM provider configuration for the chat agent
	LLM LLMConfig `yaml:"llm"`

	// CookieSecret signs the session-id cookie. Server generates an
	// ephemeral one if unset (sessions won't survive restarts).
	CookieSecret string `yaml:"-" env:"COOKIE_SECRET"`
}

// CatalogConfig holds scraper and cache settings for the beer catalog.
type CatalogConfig struct {
	// URL is the catalog listing page. Only this host is ever fetched.
	URL string `yaml:"url" env:"BEER_CATALOG_URL" env-default:"https://cervezafortuna.com/inicio/cervezas/"`

	// TTLHours is the snapshot freshness threshold. A stale snapshot
	// triggers a refresh on the next read.
	TTLHours int `yaml:"ttl_hours" env:"CACHE_TTL_HOURS" env-default:"24"`

	// RequestTimeoutSeconds bounds each fetch attempt.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"REQUEST_TIMEOUT" env-default:"10"`

	// MaxRetries is the number of retry attempts after the first failure.
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES" env-default:"2"`

	// CacheDir is where the last good snapshot is persisted so stale
	// fallback survives restarts. Empty disables disk persistence.
	CacheDir string `yaml:"cache_dir" env:"CACHE_DIR" env-default:".cache"`
}

// TTL returns the freshness threshold as a duration.
func (c *CatalogConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// RequestTimeout returns the per-attempt fetch timeout.
func (c *CatalogConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// LLM providers.
const (
	LLMProviderAnthropic = "anthropic"
	LLMProviderOpenAI    = "openai"
)

// SessionConfig holds tasting-session storage settings.
type SessionConfig struct {
	// Store selects the backend: "memory" or "redis".
	Store string `yaml:"store" env:"SESSION_STORE" env-default:"memory"`

	// IdleTimeoutHours is how long an untouched session is kept.
	IdleTimeoutHours int `yaml:"idle_timeout_hours" env:"SESSION_IDLE_TIMEOUT_HOURS" env-default:"24"`

	// Redis connection settings, used when Store is "redis".
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisPassword string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
}

// IdleTimeout returns the idle threshold as a duration.
func (c *SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutHours) * time.Hour
}

// LLMConfig holds settings for the conversation model.
type LLMConfig struct {
	// Provider selects the client: "anthropic" (default) or "openai".
	// OpenAI-compatible endpoints (vLLM, Ollama) use "openai" with BaseURL.
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"anthropic"`

	// Model is the model identifier passed to the provider.
	Model string `yaml:"model" env:"LLM_MODEL" env-default:"claude-sonnet-4-5-20250929"`

	// BaseURL overrides the provider's default endpoint. Optional.
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`

	// APIKey authenticates with the provider. Secret - env only.
	APIKey string `yaml:"-" env:"LLM_API_KEY"`

	// MaxToolIterations bounds the tool-calling loop within one turn.
	MaxToolIterations int `yaml:"max_tool_iterations" env:"LLM_MAX_TOOL_ITERATIONS" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.Catalog.URL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("catalog url %q is not a valid absolute URL", c.Catalog.URL)
	}
	if c.Catalog.TTLHours <= 0 {
		return fmt.Errorf("catalog ttl_hours must be positive, got %d", c.Catalog.TTLHours)
	}
	if c.Catalog.MaxRetries < 0 {
		return fmt.Errorf("catalog max_retries must be non-negative, got %d", c.Catalog.MaxRetries)
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("session store must be \"memory\" or \"redis\", got %q", c.Session.Store)
	}
	switch c.LLM.Provider {
	case LLMProviderAnthropic, LLMProviderOpenAI:
	default:
		return fmt.Errorf("llm provider must be \"anthropic\" or \"openai\", got %q", c.LLM.Provider)
	}
	return nil
}
