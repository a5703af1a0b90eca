package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"sitecms/internal/resilience/circuitbreaker"
	"sitecms/internal/utils/text"
)

// Claude implements Generator using Anthropic's Messages API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
	metrics        *providerMetrics
}

// NewClaude creates a Claude generator. SDK-level retries are disabled.
func NewClaude(cfg Config) *Claude {
	cfg = cfg.withDefaults()
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("initialized claude text generator",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &Claude{
		client:         anthropic.NewClient(opts...),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TextGenConfig("claude")),
		config:         cfg,
		metrics:        newProviderMetrics("claude"),
	}
}

// Generate sends one message through the circuit breaker.
func (c *Claude) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doGenerate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("state", c.circuitBreaker.State().String()))
			c.metrics.observe("rejected", 0)
			return "", fmt.Errorf("claude api unavailable: circuit breaker open")
		}
		return "", err
	}
	return result.(string), nil
}

func (c *Claude) doGenerate(ctx context.Context, req Request) (string, error) {
	requestID := uuid.New().String()
	maxTokens := c.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	slog.InfoContext(ctx, "starting text generation",
		slog.String("provider", "claude"),
		slog.String("request_id", requestID),
		slog.Int("prompt_length", text.CountRunes(req.Prompt)))

	start := time.Now()
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "text generation failed",
			slog.String("provider", "claude"),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		c.metrics.observe("error", duration)
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		c.metrics.observe("empty", duration)
		return "", fmt.Errorf("claude api returned empty response")
	}

	slog.InfoContext(ctx, "text generation completed",
		slog.String("provider", "claude"),
		slog.String("request_id", requestID),
		slog.Int("output_length", text.CountRunes(b.String())),
		slog.Duration("duration", duration))
	c.metrics.observe("success", duration)

	return b.String(), nil
}

func (c *Claude) Breaker() *circuitbreaker.CircuitBreaker { return c.circuitBreaker }
