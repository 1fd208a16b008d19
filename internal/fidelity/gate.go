package fidelity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/skating"
)

// DefaultMinJudges is the smallest panel a competition may be judged by.
const DefaultMinJudges = 3

// ErrInvalidConfig is returned by NewGate for a configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid gate configuration")

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config tunes the gate's thresholds.
type Config struct {
	// MinJudges is the smallest accepted judging panel.
	MinJudges int `yaml:"min_judges" json:"min_judges" env:"MIN_JUDGES" validate:"min=1,max=26"`

	// ScoreTolerance is the absolute tolerance for WDSF total checks.
	ScoreTolerance float64 `yaml:"score_tolerance" json:"score_tolerance" env:"SCORE_TOLERANCE" validate:"gt=0,lt=1"`
}

// DefaultConfig returns the thresholds used by the package-level Verify.
func DefaultConfig() Config {
	return Config{MinJudges: DefaultMinJudges, ScoreTolerance: DefaultScoreTolerance}
}

// Gate is the fidelity gate. It is immutable after construction and safe
// for concurrent use.
type Gate struct {
	config Config
	ranker domain.RankAggregator
}

// Option customizes a Gate.
type Option func(*Gate)

// WithRankAggregator replaces the Skating System calculator used to
// recompute final-round ranks.
func WithRankAggregator(r domain.RankAggregator) Option {
	return func(g *Gate) { g.ranker = r }
}

// NewGate creates a gate with a validated configuration.
func NewGate(config Config, opts ...Option) (*Gate, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	g := &Gate{config: config, ranker: skating.Calculator{}}
	for _, opt := range opts {
		opt(g)
	}
	if g.ranker == nil {
		return nil, fmt.Errorf("%w: nil rank aggregator", ErrInvalidConfig)
	}
	return g, nil
}

var defaultGate = func() *Gate {
	g, err := NewGate(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return g
}()

// Verify runs the gate with DefaultConfig.
func Verify(c *domain.Competition) domain.Verdict { return defaultGate.Verify(c) }

// Verify checks the competition and returns its verdict. Checks run in a
// fixed order and the first check that finds anything decides the verdict
// with all of its findings; later checks assume the earlier ones passed.
//
//  1. panel size, participants and rounds are present
//  2. the contested dances meet the competition's minimum
//  3. the last round carries placements or scores
//  4. every round is complete and every WDSF total adds up
//  5. the fields of consecutive rounds progress consistently
//  6. placements of a DTV final reproduce the declared final ranks
//
// MinDances is taken as stored; callers re-apply the policy when the
// competition's date changes.
func (g *Gate) Verify(c *domain.Competition) domain.Verdict {
	if reasons := g.checkStructure(c); len(reasons) > 0 {
		return domain.Reject(reasons...)
	}

	if n := countDances(c.Dances); n < c.MinDances {
		return domain.Reject(domain.Reason{Code: domain.ReasonBelowMinimumDances, Expected: c.MinDances, Actual: n})
	}

	last, _ := c.LastRound()
	switch last.Data.(type) {
	case domain.DTVData, domain.WDSFData:
	default:
		return domain.Reject(domain.Reason{Code: domain.ReasonMissingFinalAnchor, Round: last.Name})
	}

	judges := c.Officials.JudgeCodes()
	var reasons []domain.Reason
	for _, round := range c.Rounds {
		reasons = append(reasons, CheckCompleteness(round, judges, c.Dances)...)
		reasons = append(reasons, CheckScoreMath(round, g.config.ScoreTolerance)...)
	}
	if len(reasons) > 0 {
		return domain.Reject(reasons...)
	}

	if reasons := CheckProgression(c.Rounds, c.Participants); len(reasons) > 0 {
		return domain.Reject(reasons...)
	}

	placements, ok := last.Data.(domain.DTVData)
	if !ok {
		return domain.Accept()
	}
	return g.scrutinize(c, last.Name, placements)
}

func (g *Gate) checkStructure(c *domain.Competition) []domain.Reason {
	var reasons []domain.Reason
	if len(c.Officials.Judges) < g.config.MinJudges {
		reasons = append(reasons, domain.Reason{
			Code: domain.ReasonInsufficientOfficials, Expected: g.config.MinJudges, Actual: len(c.Officials.Judges),
		})
	}
	if len(c.Participants) == 0 {
		reasons = append(reasons, domain.Reason{Code: domain.ReasonEmptyParticipants})
	}
	if len(c.Rounds) == 0 {
		reasons = append(reasons, domain.Reason{Code: domain.ReasonEmptyRounds})
	}
	return reasons
}

// scrutinize recomputes the final's ranks from raw placements and compares
// them with every declared final rank of a bib that danced the final.
func (g *Gate) scrutinize(c *domain.Competition, round string, placements domain.DTVData) domain.Verdict {
	raw := placements.ByDance()
	danceRanks := make(map[domain.Dance]map[domain.Bib]int, len(raw))
	for dance, marks := range raw {
		ranks, err := g.ranker.RankDance(marks)
		if err != nil {
			return domain.Reject(domain.Reason{Code: domain.ReasonIncompleteRound, Round: round, Dance: dance})
		}
		danceRanks[dance] = ranks
	}
	overall := g.ranker.RankOverall(danceRanks, raw)

	participants := slices.Clone(c.Participants)
	slices.SortFunc(participants, func(a, b domain.Participant) int { return int(a.Bib - b.Bib) })

	verdict := domain.Verdict{Ranks: overall, DanceRanks: danceRanks}
	for _, p := range participants {
		if p.FinalRank == nil {
			continue
		}
		got, ok := overall[p.Bib]
		if !ok || got == *p.FinalRank {
			continue
		}
		verdict.Reasons = append(verdict.Reasons, domain.Reason{
			Code: domain.ReasonScrutineeringMismatch, Round: round, Bib: p.Bib, Expected: *p.FinalRank, Actual: got,
		})
	}
	verdict.Accepted = len(verdict.Reasons) == 0
	return verdict
}

func countDances(dances []domain.Dance) int {
	seen := make(map[domain.Dance]struct{}, len(dances))
	for _, d := range dances {
		seen[d] = struct{}{}
	}
	return len(seen)
}
