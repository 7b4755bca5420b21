package observability

import (
	"context"

	"github.com/aretw0/doing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for the doing engine.
type Metrics struct {
	steps        *prometheus.CounterVec
	aborts       prometheus.Counter
	hookFailures *prometheus.CounterVec
	live         prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration, which keeps tests isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doing_steps_total",
				Help: "Total number of steps by control sent and resulting state",
			},
			[]string{"control", "state"},
		),
		aborts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "doing_aborts_total",
				Help: "Total number of doers that reached the aborted state",
			},
		),
		hookFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doing_hook_failures_total",
				Help: "Total number of failed lifecycle hooks",
			},
			[]string{"hook"},
		),
		live: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "doing_live_doers",
				Help: "Number of doers currently scheduled by the runner",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.steps, m.aborts, m.hookFailures, m.live)
	}
	return m
}

// Hooks returns lifecycle callbacks feeding the collectors.
// Combine with other callbacks through Chain.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.steps.WithLabelValues(e.Control.String(), e.To.String()).Inc()
			if e.To == domain.StateAborted && e.From != domain.StateAborted {
				m.aborts.Inc()
			}
		},
		OnHookError: func(ctx context.Context, e *domain.HookErrorEvent) {
			m.hookFailures.WithLabelValues(string(e.Hook)).Inc()
		},
	}
}

// SetLive records the number of scheduled doers.
func (m *Metrics) SetLive(n int) {
	m.live.Set(float64(n))
}
