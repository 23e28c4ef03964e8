// Package ai abstracts the LLM backends used for prompt optimization
// and test-running. Each provider handles its own API communication;
// callers select one through the factory based on the stored settings.
package ai

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the interface every AI backend implements.
type Provider interface {
	// Generate sends a chat completion request and returns the generated
	// text. systemPrompt sets the model's behaviour; userPrompt is the
	// user's request. params may carry model overrides and sampling knobs.
	Generate(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error)

	// GenerateImage renders an image from the prompt and returns its URL.
	GenerateImage(ctx context.Context, prompt string, params Params) (string, error)

	// Name returns the provider identifier (e.g. "openai").
	Name() string
}

// Config holds the credentials and defaults for a provider, typically
// sourced from the application settings.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// Params carries per-call overrides.
type Params struct {
	Model       string
	Temperature *float64
}

// New builds the provider named in cfg. Any OpenAI-compatible backend
// works through the openai provider with a custom base URL.
func New(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: no API key configured")
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return newOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
