// Package metrics provides recorders observing record store operations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records operation durations and outcomes as Prometheus
// collectors.
type Prometheus struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheus registers the toolcrib collectors with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolcrib",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of record store operations.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolcrib",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Record store operations by outcome.",
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{p.durations, p.results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Observe records a store operation outcome.
func (p *Prometheus) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	p.durations.WithLabelValues(operation).Observe(duration.Seconds())
	p.results.WithLabelValues(operation, statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Discard drops all observations.
type Discard struct{}

// Observe implements the recorder interface.
func (Discard) Observe(context.Context, string, bool, time.Duration) {}
