package healthcheck

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HealthMetrics provides Prometheus metrics for health checks
type HealthMetrics struct {
	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	checkStatus   *prometheus.GaugeVec
	overallStatus prometheus.Gauge
}

// NewHealthMetrics registers the health metrics on reg
func NewHealthMetrics(reg prometheus.Registerer) *HealthMetrics {
	factory := promauto.With(reg)

	return &HealthMetrics{
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mealplanner",
				Subsystem: "health",
				Name:      "checks_total",
				Help:      "Total number of health checks performed",
			},
			[]string{"check", "status"},
		),
		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mealplanner",
				Subsystem: "health",
				Name:      "check_duration_seconds",
				Help:      "Duration of individual health checks",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"check"},
		),
		checkStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mealplanner",
				Subsystem: "health",
				Name:      "check_status",
				Help:      "Latest check status (1=healthy, 0.5=degraded, 0=unhealthy)",
			},
			[]string{"check"},
		),
		overallStatus: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mealplanner",
				Subsystem: "health",
				Name:      "status",
				Help:      "Overall service status (1=healthy, 0.5=degraded, 0=unhealthy)",
			},
		),
	}
}

// Record records the outcome of a single check. Safe on a nil receiver.
func (hm *HealthMetrics) Record(check Check) {
	if hm == nil {
		return
	}
	hm.checksTotal.WithLabelValues(check.Name, string(check.Status)).Inc()
	hm.checkDuration.WithLabelValues(check.Name).Observe(check.Duration.Seconds())
	hm.checkStatus.WithLabelValues(check.Name).Set(statusToFloat(check.Status))
}

// RecordOverall records the aggregated status
func (hm *HealthMetrics) RecordOverall(status Status) {
	if hm == nil {
		return
	}
	hm.overallStatus.Set(statusToFloat(status))
}

func statusToFloat(status Status) float64 {
	switch status {
	case StatusHealthy:
		return 1
	case StatusDegraded:
		return 0.5
	default:
		return 0
	}
}

type meteredChecker struct {
	name    string
	metrics *HealthMetrics
	next    Checker
}

// WithMetrics wraps a checker so each run is recorded under name, for
// checkers run outside a HealthCheck
func WithMetrics(name string, metrics *HealthMetrics, checker Checker) Checker {
	return &meteredChecker{name: name, metrics: metrics, next: checker}
}

func (m *meteredChecker) Check(ctx context.Context) Check {
	check := m.next.Check(ctx)
	if check.Name == "" {
		check.Name = m.name
	}
	m.metrics.Record(check)
	return check
}
