package monitoring

import (
	"context"
	"fmt"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/alchemorsel/mealplanner"

// TracingProvider wraps OpenTelemetry tracing functionality
type TracingProvider struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracingProvider creates a tracing provider exporting over OTLP/HTTP.
// When tracing is disabled the global no-op provider is used.
func NewTracingProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*TracingProvider, error) {
	if !cfg.Monitoring.TracingEnabled {
		logger.Info("Tracing is disabled")
		return &TracingProvider{tracer: otel.Tracer(instrumentationName), logger: logger}, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Monitoring.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.Monitoring.ServiceName),
			semconv.ServiceVersion(cfg.App.Version),
			semconv.DeploymentEnvironment(cfg.App.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Monitoring.SamplingRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized",
		zap.String("service", cfg.Monitoring.ServiceName),
		zap.String("otlp_endpoint", cfg.Monitoring.OTLPEndpoint),
		zap.Float64("sampling_rate", cfg.Monitoring.SamplingRate),
	)

	return &TracingProvider{
		tracer:   tp.Tracer(instrumentationName),
		provider: tp,
		logger:   logger,
	}, nil
}

// Tracer returns the tracer used by the application
func (t *TracingProvider) Tracer() trace.Tracer {
	return t.tracer
}

// StartAISpan starts a span for an LLM call
func (t *TracingProvider) StartAISpan(ctx context.Context, provider, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("ai.%s.%s", provider, operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ai.provider", provider),
			attribute.String("ai.operation", operation),
		),
	)
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Shutdown flushes and stops the tracer provider
func (t *TracingProvider) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	t.logger.Info("Shutting down tracing provider")
	return t.provider.Shutdown(ctx)
}
