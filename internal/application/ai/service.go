// Package ai provides the application layer for LLM operations: provider
// selection, fallback, concurrency limits and instrumentation.
package ai

import (
	"context"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	opGenerate = "generate"
	opAnnotate = "annotate"
	opEmbed    = "embed"
)

var _ outbound.AIService = (*Service)(nil)

// Service routes calls to the primary provider and, when enabled, retries
// generation and annotation on the fallback provider. Embeddings never fall
// back because vectors from different models are not comparable.
type Service struct {
	primary  outbound.AIProvider
	fallback outbound.AIProvider
	sem      *semaphore.Weighted
	metrics  *monitoring.Metrics
	tracing  *monitoring.TracingProvider
	logger   *zap.Logger
}

// Options configures a Service
type Options struct {
	// Fallback may be nil to disable fallback
	Fallback       outbound.AIProvider
	MaxConcurrency int
}

// NewService creates a new AI service
func NewService(
	primary outbound.AIProvider,
	opts Options,
	metrics *monitoring.Metrics,
	tracing *monitoring.TracingProvider,
	logger *zap.Logger,
) *Service {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.Fallback != nil && opts.Fallback.Name() == primary.Name() {
		opts.Fallback = nil
	}

	namedLogger := logger.Named("ai-service")
	fallbackName := "none"
	if opts.Fallback != nil {
		fallbackName = opts.Fallback.Name()
	}
	namedLogger.Info("AI service initialized",
		zap.String("primary_provider", primary.Name()),
		zap.String("fallback_provider", fallbackName),
		zap.Int("max_concurrency", opts.MaxConcurrency))

	return &Service{
		primary:  primary,
		fallback: opts.Fallback,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrency)),
		metrics:  metrics,
		tracing:  tracing,
		logger:   namedLogger,
	}
}

// Generate produces a recipe draft
func (s *Service) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, string, error) {
	var draft recipe.Draft
	provider, err := s.withFallback(ctx, opGenerate, func(ctx context.Context, p outbound.AIProvider) error {
		d, err := p.Generate(ctx, req)
		if err != nil {
			return err
		}
		// A draft the domain rejects is as useless as no answer
		if _, err := recipe.NewRecipe(d); err != nil {
			return err
		}
		draft = d
		return nil
	})
	if err != nil {
		return recipe.Draft{}, "", errors.NewAIServiceError("generate recipe", err)
	}
	return draft, provider, nil
}

// Annotate splits a recipe into tracks
func (s *Service) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, string, error) {
	var doc stepgraph.Document
	provider, err := s.withFallback(ctx, opAnnotate, func(ctx context.Context, p outbound.AIProvider) error {
		d, err := p.Annotate(ctx, r)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return stepgraph.Document{}, "", errors.NewAIServiceError("annotate recipe", err)
	}
	return doc, provider, nil
}

// Embed returns the primary provider's embedding of text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := s.call(ctx, s.primary, opEmbed, func(ctx context.Context) error {
		v, err := s.primary.Embed(ctx, text)
		vec = v
		return err
	})
	if err != nil {
		return nil, errors.NewAIServiceError("embed text", err)
	}
	return vec, nil
}

// Ping checks the primary provider
func (s *Service) Ping(ctx context.Context) error {
	return s.primary.Ping(ctx)
}

// Primary returns the name of the primary provider
func (s *Service) Primary() string {
	return s.primary.Name()
}

func (s *Service) withFallback(ctx context.Context, op string, fn func(context.Context, outbound.AIProvider) error) (string, error) {
	err := s.call(ctx, s.primary, op, func(ctx context.Context) error { return fn(ctx, s.primary) })
	if err == nil {
		return s.primary.Name(), nil
	}
	if s.fallback == nil || ctx.Err() != nil {
		return "", err
	}

	s.logger.Warn("Primary AI provider failed, trying fallback",
		zap.String("operation", op),
		zap.String("primary_provider", s.primary.Name()),
		zap.String("fallback_provider", s.fallback.Name()),
		zap.Error(err))

	if ferr := s.call(ctx, s.fallback, op, func(ctx context.Context) error { return fn(ctx, s.fallback) }); ferr != nil {
		s.logger.Error("Fallback AI provider failed", zap.String("operation", op), zap.Error(ferr))
		return "", err
	}
	s.metrics.AIFallback(op)
	return s.fallback.Name(), nil
}

func (s *Service) call(ctx context.Context, p outbound.AIProvider, op string, fn func(context.Context) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	ctx, span := s.tracing.StartAISpan(ctx, p.Name(), op)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.AIRequest(p.Name(), op, time.Since(start), err)
	if err != nil {
		monitoring.RecordError(ctx, err)
		return err
	}

	s.logger.Debug("AI call succeeded",
		zap.String("provider", p.Name()),
		zap.String("operation", op),
		zap.Duration("duration", time.Since(start)))
	return nil
}
