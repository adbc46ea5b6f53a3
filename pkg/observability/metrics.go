package observability

import (
	"net/http"
	"time"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of an editor host.
type Metrics struct {
	registry *prometheus.Registry

	mutations     *prometheus.CounterVec
	mutatedNodes  prometheus.Histogram
	dropsRejected *prometheus.CounterVec
	editDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "joist_mutations_total",
				Help: "Total number of applied tree actions",
			},
			[]string{"action"},
		),
		mutatedNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "joist_mutation_nodes",
				Help:    "Number of nodes touched by one action",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		dropsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "joist_drops_rejected_total",
				Help: "Total number of drops refused by the tree rules",
			},
			[]string{"reason"},
		),
		editDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "joist_edit_duration_seconds",
				Help: "Duration of stored document edits",
			},
			[]string{"operation", "outcome"},
		),
	}
	m.registry.MustRegister(m.mutations, m.mutatedNodes, m.dropsRejected, m.editDuration)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that record tree activity.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(c *domain.Change) {
			m.mutations.WithLabelValues(c.Action).Inc()
			if len(c.NodeIDs) > 0 {
				m.mutatedNodes.Observe(float64(len(c.NodeIDs)))
			}
		},
		OnDropRejected: func(e *domain.DropEvent) {
			reason := string(domain.ReasonOf(e.Err))
			if reason == "" {
				reason = "unknown"
			}
			m.dropsRejected.WithLabelValues(reason).Inc()
		},
	}
}

// ObserveEdit records how long a stored edit took.
func (m *Metrics) ObserveEdit(operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.editDuration.WithLabelValues(operation, outcome).Observe(time.Since(started).Seconds())
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
