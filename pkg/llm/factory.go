package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/config"
)

// NewClient creates the provider client selected by configuration.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	clientCfg := Config{
		Endpoint:          cfg.BaseURL,
		Model:             cfg.Model,
		APIKey:            cfg.APIKey,
		MaxToolIterations: cfg.MaxToolIterations,
	}

	switch cfg.Provider {
	case config.LLMProviderAnthropic:
		return NewAnthropicClient(clientCfg, logger)
	case config.LLMProviderOpenAI:
		return NewOpenAIClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
