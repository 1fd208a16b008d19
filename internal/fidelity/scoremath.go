package fidelity

import (
	"math"
	"slices"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// DefaultScoreTolerance is the absolute difference allowed between a
// reported WDSF total and the recomputed mean or sum.
const DefaultScoreTolerance = 0.011

// ScoreMathAgrees reports whether the reported total matches either the
// mean or the straight sum of the four categories. Publishers use both
// conventions. A zero total has not been totalled yet and always agrees.
func ScoreMathAgrees(score domain.WDSFScore, tolerance float64) bool {
	if score.Total == 0 {
		return true
	}
	return math.Abs(score.Mean()-score.Total) < tolerance ||
		math.Abs(score.Sum()-score.Total) < tolerance
}

// CheckScoreMath verifies every score record of a WDSF round. Other round
// shapes carry no totals and always pass.
func CheckScoreMath(round domain.Round, tolerance float64) []domain.Reason {
	data, ok := round.Data.(domain.WDSFData)
	if !ok {
		return nil
	}
	var reasons []domain.Reason
	for _, judge := range domain.JudgeCodes(data) {
		byBib := data[judge]
		bibs := make([]domain.Bib, 0, len(byBib))
		for bib := range byBib {
			bibs = append(bibs, bib)
		}
		slices.Sort(bibs)
		for _, bib := range bibs {
			if !ScoreMathAgrees(byBib[bib], tolerance) {
				reasons = append(reasons, domain.Reason{
					Code: domain.ReasonScoreMathMismatch, Round: round.Name, Judge: judge, Bib: bib,
				})
			}
		}
	}
	return reasons
}
