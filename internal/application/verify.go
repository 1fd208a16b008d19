package application

import (
	"context"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// CompetitionVerdict pairs a competition with the verdict it received.
type CompetitionVerdict struct {
	Key     string         `json:"key"`
	Name    string         `json:"name"`
	Verdict domain.Verdict `json:"verdict"`
}

// VerifyEvent runs every competition of event that passes f through v,
// in document order, without storing anything. Filtered competitions are
// left out of the result.
func VerifyEvent(ctx context.Context, v ports.ContextVerifier, event *domain.Event, f Filter) []CompetitionVerdict {
	var out []CompetitionVerdict
	for i := range event.Competitions {
		c := &event.Competitions[i]
		if !f.Match(c) {
			continue
		}
		f.Prepare(c)
		out = append(out, CompetitionVerdict{Key: c.Key(), Name: c.Name, Verdict: v.VerifyContext(ctx, c)})
	}
	return out
}

// AllAccepted reports whether every verdict accepted its competition.
func AllAccepted(verdicts []CompetitionVerdict) bool {
	for _, cv := range verdicts {
		if !cv.Verdict.Accepted {
			return false
		}
	}
	return true
}
