// Package generation wraps the text-generation collaborator behind a
// small interface. The production implementation speaks the
// OpenAI-compatible chat API via langchaingo, which covers DashScope
// (qwen models), OpenAI, and local inference servers alike; rate
// limiting and retries live here so callers stay policy-free.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid generation configuration")

	// ErrEmptyPrompt indicates an empty prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// Generator produces text from a prompt. It is the sole retryable,
// time-bounded boundary in a turn; everything upstream treats a returned
// error as terminal for the turn.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config holds generation collaborator settings.
type Config struct {
	// BaseURL of the OpenAI-compatible endpoint.
	BaseURL string
	// Model name, e.g. qwen-plus.
	Model string
	// APIKey for the endpoint.
	APIKey string
	// Timeout per call, applied on top of the caller's context.
	Timeout time.Duration
	// RateLimit is the sustained requests-per-second budget.
	RateLimit float64
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Service is the langchaingo-backed Generator.
type Service struct {
	model   llms.Model
	config  Config
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewService creates a generation service.
func NewService(config Config, log *zap.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	apiKey := config.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless local servers.
		apiKey = "placeholder"
	}
	model, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	limit := rate.Limit(config.RateLimit)
	if config.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &Service{
		model:   model,
		config:  config,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}, nil
}

// Generate produces a completion for the prompt, waiting for rate-limit
// headroom and retrying transient failures with linear backoff.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}

		out, err := s.generateOnce(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		s.log.Warn("generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", s.config.MaxRetries+1, lastErr)
}

func (s *Service) generateOnce(ctx context.Context, prompt string) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	return llms.GenerateFromSinglePrompt(ctx, s.model, prompt)
}
