// Package metrics exports save-processing counters to Prometheus.
//
// Methods handle a nil receiver, so a nil *Metrics is a no-op when metrics
// are disabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samcharles93/savekit/pkg/save"
)

// Metrics tracks detections, loads, saves and failures.
type Metrics struct {
	// Detections counts successful format detections.
	// Labels: format, method=[offsets, structure]
	Detections *prometheus.CounterVec

	// Loads counts decoded saves by format.
	Loads *prometheus.CounterVec

	// Saves counts encoded saves by target format.
	Saves *prometheus.CounterVec

	// Failures counts failed operations by phase.
	// Labels: operation=[detect, load, save, verify], phase=[sniff, checksum, framing, decode, encode, padding]
	Failures *prometheus.CounterVec

	// Duration tracks operation time.
	Duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer. Collectors already present in reg are
// reused.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Detections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savekit_detections_total",
				Help: "Total format detections by format and method",
			},
			[]string{"format", "method"},
		),
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savekit_loads_total",
				Help: "Total saves decoded by format",
			},
			[]string{"format"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savekit_saves_total",
				Help: "Total saves encoded by target format",
			},
			[]string{"format"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savekit_failures_total",
				Help: "Total failed operations by operation and phase",
			},
			[]string{"operation", "phase"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "savekit_operation_duration_seconds",
				Help:    "Save processing duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	m.Detections = registerOrReuse(reg, m.Detections).(*prometheus.CounterVec)
	m.Loads = registerOrReuse(reg, m.Loads).(*prometheus.CounterVec)
	m.Saves = registerOrReuse(reg, m.Saves).(*prometheus.CounterVec)
	m.Failures = registerOrReuse(reg, m.Failures).(*prometheus.CounterVec)
	m.Duration = registerOrReuse(reg, m.Duration).(*prometheus.HistogramVec)
	return m
}

// registerOrReuse registers c, returning the existing collector when an
// identical one is already registered. Other registration errors panic.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (m *Metrics) RecordDetect(formatID, method string, d time.Duration) {
	if m == nil {
		return
	}
	m.Detections.WithLabelValues(formatID, method).Inc()
	m.Duration.WithLabelValues("detect").Observe(d.Seconds())
}

func (m *Metrics) RecordLoad(formatID string, d time.Duration) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(formatID).Inc()
	m.Duration.WithLabelValues("load").Observe(d.Seconds())
}

func (m *Metrics) RecordSave(formatID string, d time.Duration) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(formatID).Inc()
	m.Duration.WithLabelValues("save").Observe(d.Seconds())
}

// RecordFailure counts err under its save phase, or "other" when err did
// not come from the save engine.
func (m *Metrics) RecordFailure(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	phase := string(save.PhaseOf(err))
	if phase == "" {
		phase = "other"
	}
	m.Failures.WithLabelValues(operation, phase).Inc()
}
