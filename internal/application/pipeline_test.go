package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ahrav/go-scrutineer/infrastructure/extract"
	"github.com/ahrav/go-scrutineer/infrastructure/store"
	"github.com/ahrav/go-scrutineer/infrastructure/store/sqlite"
	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// springCup has one competition the gate accepts, one it rejects and one
// in the Latin style.
func springCup() *domain.Event {
	return &domain.Event{
		Name: "Spring Cup",
		Competitions: []domain.Competition{
			competition(domain.Adult, domain.StyleStandard, domain.LevelE, 1, 2),
			competition(domain.Youth, domain.StyleStandard, domain.LevelE, 2, 1),
			competition(domain.Adult, domain.StyleLatin, domain.LevelE, 1, 2),
		},
	}
}

func TestNewPipeline_RequiresPorts(t *testing.T) {
	ex, st, led, ver := &fakeExtractor{}, &memStore{}, newMemLedger(), newVerifier(t)
	tests := []struct {
		name string
		ex   ports.Extractor
		st   ports.Store
		led  ports.Ledger
		ver  ports.ContextVerifier
	}{
		{"extractor", nil, st, led, ver},
		{"store", ex, nil, led, ver},
		{"ledger", ex, st, nil, ver},
		{"verifier", ex, st, led, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(tt.ex, tt.st, tt.led, tt.ver)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name+" is required")
		})
	}

	p, err := NewPipeline(ex, st, led, ver)
	require.NoError(t, err)
	assert.NotEmpty(t, p.RunID(), "a run id is generated")
}

func TestPipeline_Run(t *testing.T) {
	ex := &fakeExtractor{
		sources: []string{"spring.yaml", "broken.yaml", "old.yaml"},
		events:  map[string]func() *domain.Event{"spring.yaml": springCup, "old.yaml": springCup},
	}
	st := &memStore{}
	led := newMemLedger("old.yaml")
	core, logs := observer.New(zap.WarnLevel)

	p, err := NewPipeline(ex, st, led, newVerifier(t),
		WithRunID("run-1"),
		WithLogger(zap.New(core)),
		WithFilter(Filter{Style: domain.StyleStandard}),
	)
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), "events")
	require.NoError(t, err)

	assert.Equal(t, Summary{
		RunID: "run-1", Sources: 3, Accepted: 1, Rejected: 1, Filtered: 1, Skipped: 1, Failed: 1,
	}, summary)

	saved, quarantined := st.keys()
	assert.Equal(t, []string{"adult_E_std"}, saved)
	assert.Equal(t, []string{"youth_E_std"}, quarantined)

	records, err := led.Verdicts(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	rejected, ok := led.record("youth_E_std")
	require.True(t, ok)
	assert.Equal(t, "spring.yaml", rejected.Source)
	assert.False(t, rejected.Verdict.Accepted)
	assert.True(t, rejected.Verdict.Has(domain.ReasonScrutineeringMismatch))

	assert.True(t, led.processed["spring.yaml"])
	assert.False(t, led.processed["broken.yaml"], "failed sources are retried on the next run")

	assert.Equal(t, 1, logs.FilterMessage("competition rejected").Len())
	assert.Equal(t, 1, logs.FilterMessage("extraction failed").Len())
}

func TestPipeline_RerunSkipsProcessedSources(t *testing.T) {
	ex := &fakeExtractor{
		sources: []string{"spring.yaml"},
		events:  map[string]func() *domain.Event{"spring.yaml": springCup},
	}
	st := &memStore{}
	led := newMemLedger()

	first, err := NewPipeline(ex, st, led, newVerifier(t))
	require.NoError(t, err)
	_, err = first.Run(context.Background(), "events")
	require.NoError(t, err)

	second, err := NewPipeline(ex, st, led, newVerifier(t))
	require.NoError(t, err)
	summary, err := second.Run(context.Background(), "events")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Accepted+summary.Rejected)
	assert.NotEqual(t, first.RunID(), second.RunID())
}

func TestPipeline_StoreFailureAbortsRun(t *testing.T) {
	errDisk := errors.New("disk full")
	ex := &fakeExtractor{
		sources: []string{"a.yaml", "b.yaml"},
		events:  map[string]func() *domain.Event{"a.yaml": springCup, "b.yaml": springCup},
	}
	led := newMemLedger()

	p, err := NewPipeline(ex, &memStore{err: errDisk}, led, newVerifier(t))
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), "events")

	require.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "process a.yaml")
	assert.Equal(t, 1, summary.Sources, "the run stops at the failing source")
	assert.False(t, led.processed["a.yaml"])
}

func TestPipeline_ListFailure(t *testing.T) {
	ex := &fakeExtractor{listErr: ports.ErrNotFound}
	p, err := NewPipeline(ex, &memStore{}, newMemLedger(), newVerifier(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "missing")

	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPipeline_CanceledContext(t *testing.T) {
	ex := &fakeExtractor{
		sources: []string{"spring.yaml"},
		events:  map[string]func() *domain.Event{"spring.yaml": springCup},
	}
	p, err := NewPipeline(ex, &memStore{}, newMemLedger(), newVerifier(t))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Run(ctx, "events")

	require.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_ParallelVerification(t *testing.T) {
	const n = 24
	big := func() *domain.Event {
		event := &domain.Event{Name: "Big Open"}
		ages := domain.AgeGroups()
		for i := range n {
			style := domain.StyleStandard
			if i >= len(ages) {
				style = domain.StyleLatin
			}
			event.Competitions = append(event.Competitions,
				competition(ages[i%len(ages)], style, domain.LevelE, 1, 2))
		}
		return event
	}
	ex := &fakeExtractor{sources: []string{"big.yaml"}, events: map[string]func() *domain.Event{"big.yaml": big}}
	st := &memStore{}

	p, err := NewPipeline(ex, st, newMemLedger(), newVerifier(t), WithWorkers(4))
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), "events")

	require.NoError(t, err)
	assert.Equal(t, n, summary.Accepted)
	saved, _ := st.keys()
	assert.Len(t, saved, n)
}

func TestPipeline_DateFilterReappliesPolicy(t *testing.T) {
	undated := func() *domain.Event {
		c := competition(domain.Adult, domain.StyleStandard, domain.LevelD, 1, 2)
		c.Date = nil
		return &domain.Event{Name: "Undated", Competitions: []domain.Competition{c}}
	}
	ex := &fakeExtractor{sources: []string{"u.yaml"}, events: map[string]func() *domain.Event{"u.yaml": undated}}
	led := newMemLedger()
	filterDate := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	p, err := NewPipeline(ex, &memStore{}, led, newVerifier(t), WithFilter(Filter{Date: &filterDate}))
	require.NoError(t, err)

	summary, err := p.Run(context.Background(), "events")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rejected)
	rec, ok := led.record("adult_D_std")
	require.True(t, ok)
	require.Len(t, rec.Verdict.Reasons, 1)
	assert.Equal(t, domain.Reason{Code: domain.ReasonBelowMinimumDances, Expected: 4, Actual: 3}, rec.Verdict.Reasons[0])
}

func TestPipeline_EndToEnd(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	ctx := context.Background()

	doc, err := os.ReadFile(filepath.Join("testdata", "spring_cup.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(in, "spring_cup.yaml"), doc, 0o644))

	fs, err := store.NewFileStore(out)
	require.NoError(t, err)
	ledger, err := sqlite.Open(filepath.Join(out, DefaultLedgerFile))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, ledger.Close()) })

	p, err := NewPipeline(extract.NewDocumentExtractor(), fs, ledger, newVerifier(t), WithRunID("e2e"))
	require.NoError(t, err)

	summary, err := p.Run(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, Summary{RunID: "e2e", Sources: 1, Accepted: 1, Rejected: 1}, summary)

	accepted, err := store.Load(filepath.Join(out, "Spring_Cup_2025", "adult_E_std.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, accepted.MinDances)

	_, err = os.Stat(filepath.Join(out, store.DefaultQuarantineDir, "Spring_Cup_2025", "youth_E_std.verdict.json"))
	require.NoError(t, err)

	records, err := ledger.Verdicts(ctx, "e2e")
	require.NoError(t, err)
	require.Len(t, records, 2)

	again, err := p.Run(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Skipped)
}
