// Package metrics records marketlab pipeline counters and latencies in
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is safe for concurrent use. A nil *Recorder records nothing.
type Recorder struct {
	signals      *prometheus.CounterVec
	failures     *prometheus.CounterVec
	backtests    *prometheus.CounterVec
	combinations *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the marketlab collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlab_signals_generated_total",
				Help: "Trading signals generated, by direction",
			},
			[]string{"direction"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlab_pipeline_failures_total",
				Help: "Per-symbol pipeline failures, by stage",
			},
			[]string{"stage"},
		),
		backtests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlab_backtests_total",
				Help: "Backtests run, by strategy",
			},
			[]string{"strategy"},
		),
		combinations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlab_optimizer_combinations_total",
				Help: "Optimizer grid points evaluated, by outcome",
			},
			[]string{"outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketlab_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSignal(direction string) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(direction).Inc()
}

// RecordFailure counts a failure in stage, e.g. "signal" or "correlation".
func (r *Recorder) RecordFailure(stage string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(stage).Inc()
}

func (r *Recorder) RecordBacktest(strategy string) {
	if r == nil {
		return
	}
	r.backtests.WithLabelValues(strategy).Inc()
}

// RecordCombination counts one optimizer grid point; failed points are
// counted separately.
func (r *Recorder) RecordCombination(failed bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	r.combinations.WithLabelValues(outcome).Inc()
}

// ObserveSince records the time elapsed since start for op.
func (r *Recorder) ObserveSince(op string, start time.Time) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
