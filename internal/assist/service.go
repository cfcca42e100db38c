package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/marginalia-app/marginalia/internal/errs"
	"github.com/marginalia-app/marginalia/internal/obs"
)

// MaxInputLen caps caller-supplied text sent to the provider.
const MaxInputLen = 20000

// Instruction templates. The caller's text is embedded verbatim.
const (
	summarizeTemplate = "Summarize the following text in a single concise paragraph:\n\n%s"
	improveTemplate   = "Improve the clarity, grammar, and style of the following text. Return only the improved text:\n\n%s"
	ideasTemplate     = "Generate a short list of creative ideas about the following topic:\n\n%s"
)

// Service exposes the three text-assist operations over any Provider.
type Service struct {
	provider Provider
}

// NewService creates an assist service backed by the given provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Summarize condenses the caller's text.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	return s.run(ctx, "summarize", summarizeTemplate, text)
}

// Improve rewrites the caller's text for clarity and style.
func (s *Service) Improve(ctx context.Context, text string) (string, error) {
	return s.run(ctx, "improve", improveTemplate, text)
}

// Ideas generates ideas about the caller's topic.
func (s *Service) Ideas(ctx context.Context, topic string) (string, error) {
	return s.run(ctx, "ideas", ideasTemplate, topic)
}

func (s *Service) run(ctx context.Context, op, template, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.New(errs.InvalidArgument, "text is required")
	}
	if err := validation.Validate(text, validation.Length(1, MaxInputLen)); err != nil {
		return "", errs.Wrap(errs.InvalidArgument, "text too long", err)
	}

	instruction := fmt.Sprintf(template, text)

	start := time.Now()
	result, err := s.provider.Complete(ctx, instruction)
	if err != nil {
		obs.From(ctx).With("pkg", "assist").Warn("provider_error",
			"op", op,
			"error", err.Error(),
		)
		return "", errs.Wrap(errs.Unavailable, "text assist provider failed", err)
	}

	obs.From(ctx).With("pkg", "assist").Debug("provider_ok",
		"op", op,
		"dur_ms", float64(time.Since(start).Microseconds())/1000.0,
		"input_len", len(text),
		"output_len", len(result),
	)
	return result, nil
}
