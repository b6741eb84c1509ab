package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mealplanner"

// Metrics handles Prometheus metrics collection. All collectors are
// registered on the registry handed to NewMetrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// LLM metrics
	aiRequestsTotal   *prometheus.CounterVec
	aiRequestDuration *prometheus.HistogramVec
	aiFallbacksTotal  *prometheus.CounterVec

	// Graph metrics
	graphBuildsTotal      *prometheus.CounterVec
	graphDiagnosticsTotal *prometheus.CounterVec
	graphTracks           prometheus.Histogram
	parseCacheTotal       *prometheus.CounterVec

	// Business metrics
	recipesGeneratedTotal prometheus.Counter
	swipesTotal           *prometheus.CounterVec
	shoppingListsTotal    prometheus.Counter
	archiveTotal          *prometheus.CounterVec
}

// NewRegistry returns a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics creates the application metrics on reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Total number of LLM requests",
			},
			[]string{"provider", "operation", "status"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "LLM request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"provider", "operation"},
		),
		aiFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_fallbacks_total",
				Help:      "LLM calls answered by the fallback provider",
			},
			[]string{"operation"},
		),

		graphBuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_builds_total",
				Help:      "Step graphs built, by outcome",
			},
			[]string{"outcome"},
		),
		graphDiagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_diagnostics_total",
				Help:      "Builder diagnostics, by kind",
			},
			[]string{"kind"},
		),
		graphTracks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_tracks",
				Help:      "Number of tracks per built graph",
				Buckets:   prometheus.LinearBuckets(1, 1, 8),
			},
		),
		parseCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_cache_lookups_total",
				Help:      "Parsed-graph cache lookups",
			},
			[]string{"tier", "result"},
		),

		recipesGeneratedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipes_generated_total",
				Help:      "Total number of generated recipe candidates",
			},
		),
		swipesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swipes_total",
				Help:      "Recipe swipes, by direction",
			},
			[]string{"direction"},
		),
		shoppingListsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shopping_lists_created_total",
				Help:      "Total number of shopping lists created",
			},
		),
		archiveTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_archive_total",
				Help:      "Parsed graphs written to object storage",
			},
			[]string{"status"},
		),
	}
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, statusCode).Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(c.Request.Method, path).Observe(float64(c.Writer.Size()))
	}
}

// AIRequest records one provider call
func (m *Metrics) AIRequest(provider, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.aiRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	m.aiRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// AIFallback records a call served by the fallback provider
func (m *Metrics) AIFallback(operation string) {
	m.aiFallbacksTotal.WithLabelValues(operation).Inc()
}

// GraphBuilt records the shape and diagnostics of a built graph
func (m *Metrics) GraphBuilt(g stepgraph.StepGraph, diags []stepgraph.Diagnostic) {
	outcome := "tracks"
	if g.IsFallback() {
		outcome = "fallback"
	}
	m.graphBuildsTotal.WithLabelValues(outcome).Inc()
	m.graphTracks.Observe(float64(len(g.Tracks)))
	for kind, n := range stepgraph.CountByKind(diags) {
		m.graphDiagnosticsTotal.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// CacheLookup records a parse cache hit or miss on a tier
func (m *Metrics) CacheLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.parseCacheTotal.WithLabelValues(tier, result).Inc()
}

// RecipesGenerated counts generated candidates
func (m *Metrics) RecipesGenerated(n int) {
	m.recipesGeneratedTotal.Add(float64(n))
}

// Swipe counts a swipe
func (m *Metrics) Swipe(direction string) {
	m.swipesTotal.WithLabelValues(direction).Inc()
}

// ShoppingListCreated counts a new shopping list
func (m *Metrics) ShoppingListCreated() {
	m.shoppingListsTotal.Inc()
}

// Archived records the outcome of an archive upload
func (m *Metrics) Archived(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.archiveTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
