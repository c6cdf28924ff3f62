package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/graphql-cli/internal/schemasync"
)

const OutcomeError = "error"

// Metrics holds the watch-mode collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal   *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	LastChange    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_schema_sync_cycles_total",
				Help: "Schema sync cycles by outcome",
			},
			[]string{"outcome"},
		),
		CycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "graphql_schema_sync_cycle_duration_seconds",
				Help:    "Duration of a schema sync cycle in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		LastChange: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "graphql_schema_sync_last_change_timestamp_seconds",
				Help: "Unix time of the last cycle that wrote the schema file",
			},
		),
	}
}

func (m *Metrics) ObserveCycle(outcome schemasync.Outcome, err error, d time.Duration, now time.Time) {
	m.CycleDuration.Observe(d.Seconds())
	if err != nil {
		m.CyclesTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.CyclesTotal.WithLabelValues(outcome.String()).Inc()
	if outcome.Changed() {
		m.LastChange.Set(float64(now.Unix()))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
