package ai

import (
	"fmt"

	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/secrets"
)

// SupportedProviders lists available provider types for display.
var SupportedProviders = []string{"openai", "azure", "anthropic", "gemini", "ollama", "placeholder"}

// NewProvider creates an AI provider from a config entry. API keys may be
// literals or keyring:<item> references; ${VAR} forms were already resolved
// by the config loader. The core never branches on provider identity —
// this mapping is the only place types are dispatched.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	apiKey, err := secrets.Resolve(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("resolve api key for %q: %w", cfg.Name, err)
	}

	switch cfg.Type {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not set for provider %q (set api_key in askdb.yaml, a ${VAR} reference, or keyring:<item>)", cfg.Name)
		}
		return NewOpenAI(apiKey, cfg.Model, cfg.Endpoint, cfg.Temperature, cfg.MaxTokens), nil

	case "azure":
		if apiKey == "" {
			return nil, fmt.Errorf("Azure OpenAI API key not set for provider %q", cfg.Name)
		}
		if cfg.Endpoint == "" || cfg.Deployment == "" {
			return nil, fmt.Errorf("Azure provider %q requires endpoint and deployment", cfg.Name)
		}
		return NewAzure(apiKey, cfg.Endpoint, cfg.Deployment, cfg.Temperature, cfg.MaxTokens), nil

	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key not set for provider %q", cfg.Name)
		}
		return NewAnthropic(apiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key not set for provider %q", cfg.Name)
		}
		return NewGemini(apiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case "ollama":
		return NewOllama(cfg.Endpoint, cfg.Model, cfg.Temperature), nil

	case "placeholder", "":
		return NewPlaceholder(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type %q. Supported: %v", cfg.Type, SupportedProviders)
	}
}
