// Package application orchestrates a scrutineer run: it loads the
// configuration, walks the input sources and drives each competition
// through the fidelity gate into storage.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// DefaultWorkers is the verification parallelism when none is configured.
const DefaultWorkers = 4

// Summary counts what one run did. Sources counts every listed source,
// including skipped and failed ones; the remaining counters are per
// competition except Skipped and Failed, which are per source.
type Summary struct {
	RunID    string `json:"run_id"`
	Sources  int    `json:"sources"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Filtered int    `json:"filtered"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

func (s *Summary) add(o Summary) {
	s.Sources += o.Sources
	s.Accepted += o.Accepted
	s.Rejected += o.Rejected
	s.Filtered += o.Filtered
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

type outcome int

const (
	outcomeFiltered outcome = iota
	outcomeAccepted
	outcomeRejected
)

// Pipeline moves event documents through extraction, filtering, the
// fidelity gate and storage, recording every verdict in the ledger.
// A Pipeline is safe for sequential reuse; Run must not be called
// concurrently on the same instance.
type Pipeline struct {
	extractor ports.Extractor
	store     ports.Store
	ledger    ports.Ledger
	verifier  ports.ContextVerifier
	metrics   ports.MetricsCollector
	logger    *zap.Logger
	filter    Filter
	workers   int
	runID     string
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithFilter restricts the competitions the pipeline processes.
func WithFilter(f Filter) PipelineOption { return func(p *Pipeline) { p.filter = f } }

// WithWorkers bounds verification parallelism. Values below one are ignored.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m ports.MetricsCollector) PipelineOption {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithRunID fixes the run identifier recorded in the ledger.
func WithRunID(id string) PipelineOption { return func(p *Pipeline) { p.runID = id } }

// NewPipeline wires a pipeline. Every port is required.
func NewPipeline(
	extractor ports.Extractor,
	store ports.Store,
	ledger ports.Ledger,
	verifier ports.ContextVerifier,
	opts ...PipelineOption,
) (*Pipeline, error) {
	switch {
	case extractor == nil:
		return nil, errors.New("extractor is required")
	case store == nil:
		return nil, errors.New("store is required")
	case ledger == nil:
		return nil, errors.New("ledger is required")
	case verifier == nil:
		return nil, errors.New("verifier is required")
	}
	p := &Pipeline{
		extractor: extractor,
		store:     store,
		ledger:    ledger,
		verifier:  verifier,
		metrics:   ports.NoopMetrics{},
		logger:    zap.NewNop(),
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	return p, nil
}

// RunID returns the identifier under which verdicts are recorded.
func (p *Pipeline) RunID() string { return p.runID }

// Run processes every source below inputDir. Sources that fail to extract
// are logged and counted; storage and ledger failures abort the run. The
// summary reflects the work done before any error.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: p.runID}

	sources, err := p.extractor.List(ctx, inputDir)
	if err != nil {
		return summary, fmt.Errorf("list sources: %w", err)
	}
	p.logger.Info("run started",
		zap.String("run_id", p.runID),
		zap.String("input", inputDir),
		zap.Int("sources", len(sources)))

	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.metrics.RecordGauge("sources_pending", float64(len(sources)-i), map[string]string{"stage": "pipeline"})
		got, err := p.ProcessSource(ctx, source)
		summary.add(got)
		if err != nil {
			return summary, err
		}
	}
	p.metrics.RecordGauge("sources_pending", 0, map[string]string{"stage": "pipeline"})
	p.metrics.RecordLatency("run", time.Since(start), map[string]string{"stage": "pipeline"})

	p.logger.Info("run finished",
		zap.String("run_id", p.runID),
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("filtered", summary.Filtered),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", time.Since(start)))
	return summary, nil
}

// ProcessSource handles one source end to end. A source already marked in
// the ledger is skipped; a fully handled source is marked.
func (p *Pipeline) ProcessSource(ctx context.Context, source string) (Summary, error) {
	start := time.Now()
	summary := Summary{Sources: 1}
	log := p.logger.With(zap.String("source", source))

	done, err := p.ledger.IsProcessed(ctx, source)
	if err != nil {
		return summary, err
	}
	if done {
		log.Debug("skipping processed source")
		summary.Skipped = 1
		return summary, nil
	}

	event, err := p.extractor.Extract(ctx, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, ctxErr
		}
		log.Error("extraction failed", zap.Error(err))
		p.metrics.RecordCounter(ports.MetricSourceErrors, 1, map[string]string{"stage": "extract", "status": "error"})
		summary.Failed = 1
		return summary, nil
	}
	p.metrics.RecordHistogram("competitions_per_event", float64(len(event.Competitions)), map[string]string{"stage": "extract"})

	outcomes := make([]outcome, len(event.Competitions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range event.Competitions {
		g.Go(func() error {
			o, err := p.processCompetition(gctx, log, source, event, &event.Competitions[i])
			outcomes[i] = o
			return err
		})
	}
	if err := g.Wait(); err != nil {
		p.metrics.RecordCounter(ports.MetricSourceErrors, 1, map[string]string{"stage": "store", "status": "error"})
		return summary, fmt.Errorf("process %s: %w", source, err)
	}

	for _, o := range outcomes {
		switch o {
		case outcomeAccepted:
			summary.Accepted++
		case outcomeRejected:
			summary.Rejected++
		default:
			summary.Filtered++
		}
	}

	if err := p.ledger.MarkProcessed(ctx, source); err != nil {
		return summary, err
	}
	p.metrics.RecordLatency("source", time.Since(start), map[string]string{"stage": "pipeline"})
	log.Info("source processed",
		zap.String("event", event.Name),
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("filtered", summary.Filtered))
	return summary, nil
}

func (p *Pipeline) processCompetition(
	ctx context.Context,
	log *zap.Logger,
	source string,
	event *domain.Event,
	c *domain.Competition,
) (outcome, error) {
	if !p.filter.Match(c) {
		log.Debug("competition filtered", zap.String("competition", c.Key()))
		return outcomeFiltered, nil
	}
	p.filter.Prepare(c)

	verdict := p.verifier.VerifyContext(ctx, c)

	var err error
	if verdict.Accepted {
		_, err = p.store.Save(ctx, event, c)
	} else {
		log.Warn("competition rejected",
			zap.String("competition", c.Key()),
			zap.Strings("reasons", reasonStrings(verdict.Reasons)))
		_, err = p.store.Quarantine(ctx, event, c, verdict)
	}
	if err != nil {
		return outcomeFiltered, err
	}

	if err := p.ledger.Record(ctx, ports.VerdictRecord{
		RunID:          p.runID,
		Source:         source,
		CompetitionKey: c.Key(),
		Verdict:        verdict,
	}); err != nil {
		return outcomeFiltered, err
	}

	if verdict.Accepted {
		return outcomeAccepted, nil
	}
	return outcomeRejected, nil
}

func reasonStrings(reasons []domain.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}
