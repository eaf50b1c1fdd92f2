package inference

import (
	"context"
	"fmt"
	"strings"
)

// Request is a single structured-output call.
type Request struct {
	// Schema is the JSON schema the response must conform to.
	Schema      map[string]any
	SchemaName  string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider sends one prompt to a model and returns its raw text response.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// NewProvider creates a provider based on the configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return newGeminiProvider(cfg)
	case "openai":
		return newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
