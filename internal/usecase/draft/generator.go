// Package draft asks the text-generation capability for a first draft of a
// news item or partnership and normalizes the answer into form fields.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sitecms/internal/domain/entity"
	"sitecms/internal/infra/textgen"
	"sitecms/internal/observability/metrics"
	"sitecms/internal/observability/tracing"
	"sitecms/internal/utils/text"

	"go.opentelemetry.io/otel/attribute"
)

// Field limits, in runes.
const (
	MaxTitle       = 80
	MaxExcerpt     = 150
	MaxDescription = 280

	// A description ends on its own sentence when the last period falls in
	// the final 80 runes of the 277-rune window.
	minDescriptionCut = MaxDescription - 3 - 80
)

// Result holds the generated fields. Excerpt and Content are set for news,
// Description for partnerships.
type Result struct {
	Title       string
	Excerpt     string
	Content     string
	Description string
}

// Generator drafts content through a textgen.Generator.
type Generator struct {
	TextGen textgen.Generator
}

func NewGenerator(tg textgen.Generator) *Generator {
	return &Generator{TextGen: tg}
}

// Draft makes exactly one text-generation call for a non-empty prompt.
func (g *Generator) Draft(ctx context.Context, kind entity.Kind, prompt string) (Result, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "draft.Draft")
	defer span.End()
	span.SetAttributes(attribute.String("kind", kind.String()))

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		metrics.RecordAIDraft(kind.String(), metrics.StatusInvalid)
		return Result{}, &entity.ValidationError{Field: "prompt", Message: "describe what the draft should be about"}
	}
	if g.TextGen == nil {
		metrics.RecordAIDraft(kind.String(), metrics.StatusFailure)
		return Result{}, &entity.ConfigurationError{Setting: "AI_PROVIDER", Message: "text generation is not configured"}
	}

	out, err := g.TextGen.Generate(ctx, textgen.Request{System: systemPrompt(kind), Prompt: prompt})
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordAIDraft(kind.String(), metrics.StatusFailure)
		var ce *entity.ConfigurationError
		if errors.As(err, &ce) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("generate draft: %w", err)
	}

	raw, err := parseDraft(kind, out)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordAIDraft(kind.String(), "format_error")
		slog.Warn("AI draft could not be parsed",
			slog.String("kind", kind.String()),
			slog.Int("output_length", len(out)),
			slog.Any("error", err))
		return Result{}, err
	}

	metrics.RecordAIDraft(kind.String(), metrics.StatusSuccess)
	return normalize(kind, raw), nil
}

func normalize(kind entity.Kind, raw rawDraft) Result {
	res := Result{Title: text.TruncateRunes(strings.TrimSpace(raw.Title), MaxTitle)}
	if kind == entity.KindPartnership {
		res.Description = text.TruncateAtSentence(strings.TrimSpace(raw.Description), MaxDescription, minDescriptionCut)
		return res
	}
	res.Excerpt = text.TruncateRunes(strings.TrimSpace(raw.Excerpt), MaxExcerpt)
	res.Content = strings.TrimSpace(raw.Content)
	return res
}
