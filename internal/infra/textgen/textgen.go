// Package textgen provides the text-generation capability used to draft content.
// It includes adapters for Claude (Anthropic) and OpenAI guarded by circuit breakers.
// Calls are never retried; a failed draft is reported to the editor as is.
package textgen

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Request is one system instruction plus one user prompt.
type Request struct {
	System string
	Prompt string
	// MaxTokens overrides the provider default when positive.
	MaxTokens int
}

// Generator turns a request into completion text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures the provider.
type Config struct {
	Provider  string // "claude" or "openai"; empty disables generation
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string // optional, for proxies and tests
}

const (
	defaultMaxTokens = 1500
	defaultTimeout   = 60 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// New returns the generator for cfg.Provider. A missing provider or API key
// yields a generator that fails every call with a ConfigurationError, so the
// rest of the CMS keeps working without AI drafting.
func New(cfg Config) Generator {
	cfg = cfg.withDefaults()
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "claude", "anthropic":
		if cfg.APIKey == "" {
			return NewUnconfigured("ANTHROPIC_API_KEY", "API key is not set")
		}
		return NewClaude(cfg)
	case "openai":
		if cfg.APIKey == "" {
			return NewUnconfigured("OPENAI_API_KEY", "API key is not set")
		}
		return NewOpenAI(cfg)
	case "", "none":
		return NewUnconfigured("AI_PROVIDER", "no text generation provider configured")
	default:
		slog.Warn("unknown AI provider, drafting disabled", slog.String("provider", cfg.Provider))
		return NewUnconfigured("AI_PROVIDER", "unknown provider "+cfg.Provider)
	}
}
