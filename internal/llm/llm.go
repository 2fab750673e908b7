// Package llm is the text-completion boundary. Callers send one combined
// prompt and get one text reply; all structure is conveyed by the prompt.
package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"

	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
	defaultTimeout     = 120 * time.Second
)

// Request is a single completion call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Completer produces one text reply for one prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New builds the Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicClient(cfg), nil
	case ProviderOpenAI, ProviderGemini:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func (c Config) maxTokens(override int) int {
	if override > 0 {
		return override
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return defaultMaxTokens
}

func (c Config) temperature() float64 {
	if c.Temperature <= 0 {
		return defaultTemperature
	}
	return c.Temperature
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
