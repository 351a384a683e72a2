// Package metric provides the Prometheus collectors recorded by the
// conversion pipeline and the constraint evaluator.
//
// All Record methods are safe on a nil *Metrics so components can accept
// an optional collector set.
package metric

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "semweave"

// Metrics holds the pipeline collectors.
type Metrics struct {
	Conversions        *prometheus.CounterVec
	ConversionDuration prometheus.Histogram
	Statements         *prometheus.CounterVec
	Diagnostics        *prometheus.CounterVec
	Quads              prometheus.Counter

	Evaluations        *prometheus.CounterVec
	Violations         *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
}

// NewMetrics creates an unregistered collector set.
func NewMetrics() *Metrics {
	return &Metrics{
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "convert",
				Name:      "documents_total",
				Help:      "Documents converted, by status",
			},
			[]string{"status"},
		),
		ConversionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "convert",
				Name:      "duration_seconds",
				Help:      "Scan and build duration per document",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Statements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "convert",
				Name:      "statements_total",
				Help:      "Recognized statements, by kind",
			},
			[]string{"kind"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "convert",
				Name:      "diagnostics_total",
				Help:      "Skipped constructs, by diagnostic kind",
			},
			[]string{"kind"},
		),
		Quads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "convert",
				Name:      "quads_total",
				Help:      "Quads produced by the graph builder",
			},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "constraint",
				Name:      "evaluations_total",
				Help:      "Constraint evaluations, by status (pass, violated, error)",
			},
			[]string{"status"},
		),
		Violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "constraint",
				Name:      "violations_total",
				Help:      "Violation records, by constraint",
			},
			[]string{"constraint"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "constraint",
				Name:      "duration_seconds",
				Help:      "Query duration per constraint",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Conversions, m.ConversionDuration, m.Statements, m.Diagnostics, m.Quads,
		m.Evaluations, m.Violations, m.EvaluationDuration,
	}
}

// Register adds every collector to r. Collectors already registered with r
// are accepted.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the collectors of g in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordConversion counts one converted document.
func (m *Metrics) RecordConversion(ok bool, quads int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.Conversions.WithLabelValues(status).Inc()
	m.ConversionDuration.Observe(duration.Seconds())
	m.Quads.Add(float64(quads))
}

// RecordStatement counts one recognized statement.
func (m *Metrics) RecordStatement(kind string) {
	if m == nil {
		return
	}
	m.Statements.WithLabelValues(kind).Inc()
}

// RecordDiagnostic counts one skipped construct.
func (m *Metrics) RecordDiagnostic(kind string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(kind).Inc()
}

// RecordEvaluation counts one constraint run and its violations.
func (m *Metrics) RecordEvaluation(constraint string, violations int, err error, duration time.Duration) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.Evaluations.WithLabelValues("error").Inc()
	case violations > 0:
		m.Evaluations.WithLabelValues("violated").Inc()
		m.Violations.WithLabelValues(constraint).Add(float64(violations))
	default:
		m.Evaluations.WithLabelValues("pass").Inc()
	}
	m.EvaluationDuration.Observe(duration.Seconds())
}
