package middleware

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

const tracerName = "github.com/ahrav/go-scrutineer/fidelity"

var _ VerifyObserver = (*OTelVerifyObserver)(nil)

// OTelVerifyObserver implements observability for the fidelity gate using
// OpenTelemetry tracing. It opens one span per verification, records a span
// event per rejection reason and forwards verdict counts to a metrics
// collector.
type OTelVerifyObserver struct {
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewOTelVerifyObserver creates an observer that traces with the global
// tracer provider. metrics may be nil.
func NewOTelVerifyObserver(metrics ports.MetricsCollector) *OTelVerifyObserver {
	return NewOTelVerifyObserverWithTracer(metrics, otel.Tracer(tracerName))
}

// NewOTelVerifyObserverWithTracer creates an observer with an explicit tracer.
func NewOTelVerifyObserverWithTracer(metrics ports.MetricsCollector, tracer trace.Tracer) *OTelVerifyObserver {
	return &OTelVerifyObserver{metrics: metrics, tracer: tracer}
}

// PreVerify implements the VerifyObserver interface. It starts the span and
// records the competition's shape.
func (o *OTelVerifyObserver) PreVerify(ctx context.Context, c *domain.Competition) context.Context {
	ctx, span := o.tracer.Start(ctx, "FidelityGate.Verify")
	span.SetAttributes(
		attribute.String("competition.key", c.Key()),
		attribute.String("competition.level", string(c.Level)),
		attribute.String("competition.style", string(c.Style)),
		attribute.Int("competition.judges", len(c.Officials.Judges)),
		attribute.Int("competition.participants", len(c.Participants)),
		attribute.Int("competition.rounds", len(c.Rounds)),
		attribute.Int("competition.min_dances", c.MinDances),
	)
	return ctx
}

// PostVerify implements the VerifyObserver interface. It finalizes the span
// and records verdict metrics.
func (o *OTelVerifyObserver) PostVerify(
	ctx context.Context,
	c *domain.Competition,
	v domain.Verdict,
	elapsed time.Duration,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		attribute.Bool("verdict.accepted", v.Accepted),
		attribute.Int("verdict.reasons", len(v.Reasons)),
	)

	if o.metrics != nil {
		labels := o.createMetricLabels(c, v)
		o.metrics.RecordLatency("verify", elapsed, map[string]string{"stage": "gate"})
		o.metrics.RecordCounter(MetricVerdicts, 1, labels)
	}

	if v.Accepted {
		span.SetStatus(codes.Ok, "competition accepted")
		return
	}

	for _, r := range v.Reasons {
		span.AddEvent("verdict.reason", trace.WithAttributes(reasonAttributes(r)...))
		if o.metrics != nil {
			o.metrics.RecordCounter(MetricRejectionReasons, 1, map[string]string{"code": string(r.Code)})
		}
	}
	span.SetStatus(codes.Error, "competition rejected")
}

// createMetricLabels creates the standard set of metric labels for a verdict.
func (o *OTelVerifyObserver) createMetricLabels(c *domain.Competition, v domain.Verdict) map[string]string {
	return map[string]string{
		"accepted": strconv.FormatBool(v.Accepted),
		"level":    string(c.Level),
		"style":    string(c.Style),
		"stage":    "gate",
	}
}

func reasonAttributes(r domain.Reason) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("code", string(r.Code))}
	if r.Round != "" {
		attrs = append(attrs, attribute.String("round", r.Round))
	}
	if r.Judge != "" {
		attrs = append(attrs, attribute.String("judge", string(r.Judge)))
	}
	if r.Bib != 0 {
		attrs = append(attrs, attribute.Int("bib", int(r.Bib)))
	}
	if r.Dance != "" {
		attrs = append(attrs, attribute.String("dance", string(r.Dance)))
	}
	if r.Expected != 0 || r.Actual != 0 {
		attrs = append(attrs, attribute.Int("expected", r.Expected), attribute.Int("actual", r.Actual))
	}
	return attrs
}
