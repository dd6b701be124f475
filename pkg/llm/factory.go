package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/config"
)

// NewFromConfig creates an LLM client from the generation configuration.
// Returns LLMClient interface to enable dependency injection of mocks.
func NewFromConfig(cfg *config.GenerationConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, logger)
	case "openai", "":
		return NewClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
