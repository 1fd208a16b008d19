// Package ports declares the boundaries between the verification core and
// the infrastructure that feeds and records it.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// Extractor turns a source document into an event record.
// Implementations own the document format; the core only sees domain types.
type Extractor interface {
	// Extract reads one source and returns the event it describes. The
	// returned competitions are not yet verified and their MinDances is
	// whatever the source carried.
	//
	// Errors wrap ErrNotFound when the source does not exist and
	// ErrUnsupportedFormat when the extractor cannot read it.
	Extract(ctx context.Context, source string) (*domain.Event, error)

	// List returns the sources below dir this extractor can read, in a
	// stable order.
	List(ctx context.Context, dir string) ([]string, error)
}

// Store persists competitions that passed or failed the fidelity gate.
type Store interface {
	// Save writes an accepted competition and returns where it was written.
	// Saving the same competition twice overwrites the earlier record.
	Save(ctx context.Context, event *domain.Event, c *domain.Competition) (string, error)

	// Quarantine writes a rejected competition together with its verdict,
	// apart from accepted records, and returns where it was written.
	Quarantine(ctx context.Context, event *domain.Event, c *domain.Competition, v domain.Verdict) (string, error)
}

// VerdictRecord is one row of the verdict ledger.
type VerdictRecord struct {
	RunID          string
	Source         string
	CompetitionKey string
	Verdict        domain.Verdict
	RecordedAt     time.Time
}

// Ledger keeps an append-only audit trail of verdicts and remembers which
// sources have been processed so reruns can skip them.
type Ledger interface {
	// Record appends a verdict.
	Record(ctx context.Context, rec VerdictRecord) error

	// Verdicts returns the records of a run in insertion order.
	Verdicts(ctx context.Context, runID string) ([]VerdictRecord, error)

	// IsProcessed reports whether source was marked processed.
	IsProcessed(ctx context.Context, source string) (bool, error)

	// MarkProcessed remembers source. Marking twice is not an error.
	MarkProcessed(ctx context.Context, source string) error
}

// Metric names shared by the pipeline and the metrics adapters.
const (
	MetricVerdicts         = "verdicts_total"
	MetricRejectionReasons = "rejection_reasons_total"
	MetricSourceErrors     = "source_errors_total"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like verdicts, rejections, errors.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like in-flight sources.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like field sizes.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (NoopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string)         {}
func (NoopMetrics) RecordHistogram(string, float64, map[string]string)     {}
