// Package llm constructs langchaingo model clients from configuration.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Config selects and authenticates a model provider.
type Config struct {
	// Provider is one of openai, googleai, anthropic, mistral, ollama.
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint (openai-compatible routers,
	// local Ollama hosts).
	BaseURL string
}

// New builds a model client for the configured provider.
func New(ctx context.Context, cfg Config) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: API key is not set")
		}
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case "googleai", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("googleai: API key is not set")
		}
		return googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic: API key is not set")
		}
		return anthropic.New(
			anthropic.WithModel(cfg.Model),
			anthropic.WithToken(cfg.APIKey),
		)
	case "mistral":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("mistral: API key is not set")
		}
		return mistral.New(
			mistral.WithModel(cfg.Model),
			mistral.WithAPIKey(cfg.APIKey),
		)
	case "ollama":
		host := cfg.BaseURL
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		return ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(host),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
