package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by machine hooks.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "typomata_transitions_total",
				Help: "Total number of successful transitions",
			},
			[]string{"machine", "handler"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "typomata_errors_total",
				Help: "Total number of failed resolutions by error kind",
			},
			[]string{"machine", "kind"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "typomata_handler_duration_seconds",
				Help:    "Duration of handler executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"machine", "handler"},
		),
	}

	for _, c := range []prometheus.Collector{m.Transitions, m.Errors, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns hooks that record every resolution.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.Machine, e.Handler).Inc()
			m.Duration.WithLabelValues(e.Machine, e.Handler).Observe(e.Duration.Seconds())
		},
		OnError: func(_ context.Context, e *domain.ErrorEvent) {
			m.Errors.WithLabelValues(e.Machine, e.Kind).Inc()
		},
	}
}
