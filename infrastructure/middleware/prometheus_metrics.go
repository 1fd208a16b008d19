// Package middleware provides cross-cutting concerns for the verification
// pipeline: Prometheus metrics and OpenTelemetry tracing around the gate.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-scrutineer/internal/ports"
)

// Metric names understood by PrometheusMetrics.RecordCounter. Any other
// name is counted as a generic operation.
const (
	MetricVerdicts         = ports.MetricVerdicts
	MetricRejectionReasons = ports.MetricRejectionReasons
	MetricSourceErrors     = ports.MetricSourceErrors
)

const metricsNamespace = "scrutineer"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It provides real-time monitoring of verdicts, rejection reasons and
// pipeline latency.
type PrometheusMetrics struct {
	verdicts         *prometheus.CounterVec
	rejectionReasons *prometheus.CounterVec
	executionLatency *prometheus.HistogramVec
	valueHistogram   *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with reg. A nil reg uses the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		verdicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      MetricVerdicts,
				Help:      "Verdicts issued by the fidelity gate.",
			},
			[]string{"accepted", "level", "style"},
		),
		rejectionReasons: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      MetricRejectionReasons,
				Help:      "Rejection reasons reported by the fidelity gate, by code.",
			},
			[]string{"code"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of pipeline operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "stage"},
		),
		valueHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "observed_values",
				Help:      "Distribution of observed sizes such as fields per round.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"metric", "stage"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of operations performed by the pipeline.",
			},
			[]string{"operation", "status", "stage"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_state",
				Help:      "Current state values of the pipeline.",
			},
			[]string{"metric", "stage"},
		),
	}
}

func stageLabel(labels map[string]string) string {
	if stage := labels["stage"]; stage != "" {
		return stage
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, stageLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case MetricVerdicts:
		pm.verdicts.WithLabelValues(labels["accepted"], labels["level"], labels["style"]).Add(value)
	case MetricRejectionReasons:
		pm.rejectionReasons.WithLabelValues(labels["code"]).Add(value)
	default:
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.operationCounter.WithLabelValues(metric, status, stageLabel(labels)).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, stageLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.valueHistogram.WithLabelValues(metric, stageLabel(labels)).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
