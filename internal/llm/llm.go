// Package llm adapts generative model providers to contract.ModelClient.
package llm

import (
	"fmt"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
)

// New returns the client for the configured provider, or nil when the model
// path is disabled.
func New(cfg *contract.Config) (contract.ModelClient, error) {
	switch cfg.ModelProvider {
	case schema.OllamaProvider:
		return NewOllamaClient(cfg.ModelURL, cfg.ModelName, cfg.ModelTimeout)
	case schema.OpenAIProvider:
		return NewOpenAIClient(cfg.ModelAPIKey, cfg.ModelURL, cfg.ModelName), nil
	case schema.NoneProvider, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.ModelProvider)
	}
}
