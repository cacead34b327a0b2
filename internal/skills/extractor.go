package skills

import (
	"context"
	"strings"

	"github.com/muhammadolammi/skillsmap/internal/logger"
)

const (
	extractionTemperature = 0.2
	extractionMaxTokens   = 300
)

// Extractor asks a language model for the technical skills in a masked resume.
type Extractor struct {
	completer Completer
	model     string
	cache     Cache
}

type Option func(*Extractor)

// WithCache stores results so identical resumes skip the model call.
func WithCache(c Cache) Option {
	return func(e *Extractor) { e.cache = c }
}

// WithModelName only labels errors and logs; the completer decides the model.
func WithModelName(name string) Option {
	return func(e *Extractor) { e.model = name }
}

func NewExtractor(c Completer, opts ...Option) *Extractor {
	e := &Extractor{completer: c, model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the skills found in maskedText. The slice is never nil. When
// the model call fails the slice is empty and the returned error wraps
// ErrExternalService; callers should treat that as a warning, not a failure.
func (e *Extractor) Extract(ctx context.Context, maskedText, apiKey string) ([]string, error) {
	if strings.TrimSpace(maskedText) == "" {
		return []string{}, nil
	}

	key := CacheKey(maskedText)
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("skill cache lookup failed")
		} else if ok {
			logger.Ctx(ctx).Debug().Int("skills", len(cached)).Msg("skill cache hit")
			return Normalize(cached), nil
		}
	}

	reply, err := e.completer.Complete(ctx, CompletionRequest{
		APIKey:      apiKey,
		System:      systemPrompt,
		Prompt:      BuildPrompt(maskedText),
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
		ListOutput:  true,
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("model", e.model).Msg("skill extraction failed")
		return []string{}, &ServiceError{Model: e.model, Err: err}
	}

	found := ParseReply(reply)
	logger.Ctx(ctx).Info().Int("skills", len(found)).Msg("skills extracted")

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, found); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("skill cache store failed")
		}
	}
	return found, nil
}
