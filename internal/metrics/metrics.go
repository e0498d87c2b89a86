// Package metrics holds the Prometheus instruments for the tracker and the
// HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fitcount"

// Metrics groups every instrument the process exports.
type Metrics struct {
	Ticks          prometheus.Counter
	NoSubjectTicks prometheus.Counter
	Reps           *prometheus.CounterVec
	Sets           *prometheus.CounterVec
	Sessions       *prometheus.CounterVec
	ActiveSession  prometheus.Gauge
	SinkFailures   prometheus.Counter

	Requests        *prometheus.CounterVec
	RequestDuration prometheus.Histogram
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New registers all instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Frames processed by the active session",
		}),
		NoSubjectTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_subject_ticks_total",
			Help:      "Ticks where a tracked joint was missing",
		}),
		Reps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reps_total",
			Help:      "Repetitions counted",
		}, []string{"exercise"}),
		Sets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sets_total",
			Help:      "Sets completed by reaching the target reps",
		}, []string{"exercise"}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions by how they finished",
		}, []string{"outcome"}),
		ActiveSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_active",
			Help:      "1 while a session is active",
		}),
		SinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_log_failures_total",
			Help:      "Session log flushes that returned an error",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
