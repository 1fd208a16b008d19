package fidelity

import (
	"maps"
	"slices"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// RoundParticipants returns the bibs with at least one data cell in round.
func RoundParticipants(round domain.Round) map[domain.Bib]struct{} {
	field := make(map[domain.Bib]struct{})
	if round.Data == nil {
		return field
	}
	for _, bib := range round.Data.Bibs() {
		field[bib] = struct{}{}
	}
	return field
}

// CheckProgression verifies the cross-round participant invariants of a
// competition whose rounds are ordered earliest first:
//
//   - no bib may appear in a later round that was absent from the first;
//   - when neither a round nor its predecessor is a redance, the round is a
//     subset of its predecessor and is no larger than it;
//   - a redance round is a subset of the round before it but may be any size;
//   - a participant with a declared final rank is present in every regular
//     round whose field is at least that rank.
//
// A regular round that follows a redance is only held to the first rule.
func CheckProgression(rounds []domain.Round, participants []domain.Participant) []domain.Reason {
	if len(rounds) == 0 {
		return nil
	}

	fields := make([]map[domain.Bib]struct{}, len(rounds))
	redance := make([]bool, len(rounds))
	for i, r := range rounds {
		fields[i] = RoundParticipants(r)
		redance[i] = domain.IsRedance(r.Name)
	}

	var reasons []domain.Reason
	teleported := make(map[domain.Bib]bool)
	for i := 1; i < len(rounds); i++ {
		for _, bib := range sortedBibs(fields[i]) {
			if _, ok := fields[0][bib]; !ok && !teleported[bib] {
				teleported[bib] = true
				reasons = append(reasons, domain.Reason{
					Code: domain.ReasonParticipantTeleported, Round: rounds[i].Name, Bib: bib,
				})
			}
		}

		if redance[i] {
			if !subset(fields[i], fields[i-1]) {
				reasons = append(reasons, domain.Reason{Code: domain.ReasonProgressionViolation, Round: rounds[i].Name})
			}
			continue
		}

		if redance[i-1] {
			continue
		}
		if !subset(fields[i], fields[i-1]) || len(fields[i]) > len(fields[i-1]) {
			reasons = append(reasons, domain.Reason{Code: domain.ReasonProgressionViolation, Round: rounds[i].Name})
		}
	}

	for _, p := range participants {
		if p.FinalRank == nil {
			continue
		}
		for i, r := range rounds {
			if redance[i] || len(fields[i]) < *p.FinalRank {
				continue
			}
			if _, ok := fields[i][p.Bib]; !ok {
				reasons = append(reasons, domain.Reason{
					Code: domain.ReasonRankInconsistentWithFinalRank, Round: r.Name, Bib: p.Bib, Expected: *p.FinalRank,
				})
			}
		}
	}
	return reasons
}

func subset(a, b map[domain.Bib]struct{}) bool {
	for bib := range a {
		if _, ok := b[bib]; !ok {
			return false
		}
	}
	return true
}

func sortedBibs(set map[domain.Bib]struct{}) []domain.Bib {
	return slices.Sorted(maps.Keys(set))
}
