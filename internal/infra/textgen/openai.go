package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"sitecms/internal/resilience/circuitbreaker"
	"sitecms/internal/utils/text"
)

// OpenAI implements Generator using the chat completions API.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
	metrics        *providerMetrics
}

// NewOpenAI creates an OpenAI generator.
func NewOpenAI(cfg Config) *OpenAI {
	cfg = cfg.withDefaults()
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("initialized openai text generator",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TextGenConfig("openai")),
		config:         cfg,
		metrics:        newProviderMetrics("openai"),
	}
}

// Generate sends one chat completion through the circuit breaker.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
		return o.doGenerate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("state", o.circuitBreaker.State().String()))
			o.metrics.observe("rejected", 0)
			return "", fmt.Errorf("openai api unavailable: circuit breaker open")
		}
		return "", err
	}
	return result.(string), nil
}

func (o *OpenAI) doGenerate(ctx context.Context, req Request) (string, error) {
	requestID := uuid.New().String()
	maxTokens := o.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	slog.InfoContext(ctx, "starting text generation",
		slog.String("provider", "openai"),
		slog.String("request_id", requestID),
		slog.Int("prompt_length", text.CountRunes(req.Prompt)))

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "text generation failed",
			slog.String("provider", "openai"),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		o.metrics.observe("error", duration)
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		o.metrics.observe("empty", duration)
		return "", fmt.Errorf("openai api returned empty response")
	}
	out := resp.Choices[0].Message.Content

	slog.InfoContext(ctx, "text generation completed",
		slog.String("provider", "openai"),
		slog.String("request_id", requestID),
		slog.Int("output_length", text.CountRunes(out)),
		slog.Duration("duration", duration))
	o.metrics.observe("success", duration)

	return out, nil
}

func (o *OpenAI) Breaker() *circuitbreaker.CircuitBreaker { return o.circuitBreaker }
