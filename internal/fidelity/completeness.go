// Package fidelity decides whether an extracted competition record is an
// internally consistent, faithfully transcribed result set.
//
// The individual checks (completeness, score math, progression) return the
// structured reasons they find; Gate runs them in order and folds them into
// a domain.Verdict. Nothing here logs or performs I/O.
package fidelity

import (
	"github.com/ahrav/go-scrutineer/internal/domain"
)

// CheckCompleteness verifies that every judge on the roster recorded a
// value for every participant seen in the round. Marking and DTV rounds
// need one value per dance the round covers; when the round lists no
// dances, fallback (the competition's dances) is used. WDSF rounds need
// one score record per judge and participant.
//
// A round without any data cell is incomplete.
func CheckCompleteness(round domain.Round, judges []domain.JudgeCode, fallback []domain.Dance) []domain.Reason {
	if round.Data == nil || round.Data.Cells() == 0 {
		return []domain.Reason{{Code: domain.ReasonIncompleteRound, Round: round.Name}}
	}

	dances := round.Dances
	if len(dances) == 0 {
		dances = fallback
	}
	bibs := round.Data.Bibs()

	var reasons []domain.Reason
	for _, judge := range judges {
		switch data := round.Data.(type) {
		case domain.MarkingData:
			reasons = append(reasons, checkPerDance(round.Name, judge, data[judge], bibs, dances)...)
		case domain.DTVData:
			reasons = append(reasons, checkPerDance(round.Name, judge, data[judge], bibs, dances)...)
		case domain.WDSFData:
			reasons = append(reasons, checkScored(round.Name, judge, data[judge], bibs)...)
		}
	}
	return reasons
}

func checkPerDance[V bool | int](
	round string,
	judge domain.JudgeCode,
	byBib map[domain.Bib]map[domain.Dance]V,
	bibs []domain.Bib,
	dances []domain.Dance,
) []domain.Reason {
	if len(byBib) == 0 {
		return []domain.Reason{{Code: domain.ReasonIncompleteRound, Round: round, Judge: judge}}
	}
	var reasons []domain.Reason
	for _, bib := range bibs {
		byDance, ok := byBib[bib]
		if !ok || len(byDance) == 0 {
			reasons = append(reasons, domain.Reason{Code: domain.ReasonIncompleteRound, Round: round, Judge: judge, Bib: bib})
			continue
		}
		for _, dance := range dances {
			if _, ok := byDance[dance]; !ok {
				reasons = append(reasons, domain.Reason{
					Code: domain.ReasonIncompleteRound, Round: round, Judge: judge, Bib: bib, Dance: dance,
				})
			}
		}
	}
	return reasons
}

func checkScored(round string, judge domain.JudgeCode, byBib map[domain.Bib]domain.WDSFScore, bibs []domain.Bib) []domain.Reason {
	if len(byBib) == 0 {
		return []domain.Reason{{Code: domain.ReasonIncompleteRound, Round: round, Judge: judge}}
	}
	var reasons []domain.Reason
	for _, bib := range bibs {
		if _, ok := byBib[bib]; !ok {
			reasons = append(reasons, domain.Reason{Code: domain.ReasonIncompleteRound, Round: round, Judge: judge, Bib: bib})
		}
	}
	return reasons
}
