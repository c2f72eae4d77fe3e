package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a generation provider based on configuration.
// The deterministic grounded provider is the default.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "", "grounded":
		return NewGroundedProvider(), nil

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown generation provider: %s (supported: grounded, openai, anthropic, ollama)", config.Provider)
	}
}
