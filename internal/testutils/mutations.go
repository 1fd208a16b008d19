package testutils

import (
	"slices"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// Mutation corrupts a consistent competition in one specific way, the way
// a faulty extraction or a typo in the published results would.
type Mutation struct {
	Name string
	// Code is the reason the fidelity gate reports for the corrupted
	// competition.
	Code domain.ReasonCode
	// Apply corrupts c in place. It reports false, leaving c untouched,
	// when the competition's shape does not allow the corruption.
	Apply func(c *domain.Competition) bool
}

// Mutations returns every known corruption, ordered by the gate step that
// catches it.
func Mutations() []Mutation {
	return []Mutation{
		{Name: "drop_judges", Code: domain.ReasonInsufficientOfficials, Apply: dropJudges},
		{Name: "trim_dances", Code: domain.ReasonBelowMinimumDances, Apply: trimDances},
		{Name: "strip_final", Code: domain.ReasonMissingFinalAnchor, Apply: stripFinal},
		{Name: "drop_cell", Code: domain.ReasonIncompleteRound, Apply: dropCell},
		{Name: "corrupt_total", Code: domain.ReasonScoreMathMismatch, Apply: corruptTotal},
		{Name: "teleport", Code: domain.ReasonParticipantTeleported, Apply: teleport},
		{Name: "promote_eliminated", Code: domain.ReasonRankInconsistentWithFinalRank, Apply: promoteEliminated},
		{Name: "swap_ranks", Code: domain.ReasonScrutineeringMismatch, Apply: swapRanks},
	}
}

func dropJudges(c *domain.Competition) bool {
	if len(c.Officials.Judges) < 2 {
		return false
	}
	c.Officials.Judges = c.Officials.Judges[:2]
	return true
}

func trimDances(c *domain.Competition) bool {
	if c.MinDances < 2 || len(c.Dances) < c.MinDances-1 {
		return false
	}
	c.Dances = c.Dances[:c.MinDances-1]
	return true
}

// stripFinal replaces the final's placements or scores with bare crosses.
func stripFinal(c *domain.Competition) bool {
	last, ok := c.LastRound()
	if !ok || last.Data.Kind() == domain.KindMarking {
		return false
	}
	crosses := domain.MarkingData{}
	for _, judge := range c.Officials.JudgeCodes() {
		crosses[judge] = map[domain.Bib]map[domain.Dance]bool{}
		for _, bib := range last.Data.Bibs() {
			crosses[judge][bib] = map[domain.Dance]bool{}
			for _, dance := range c.Dances {
				crosses[judge][bib][dance] = true
			}
		}
	}
	c.Rounds[len(c.Rounds)-1].Data = crosses
	return true
}

// dropCell removes the first judge's value for the lowest bib in the first
// round.
func dropCell(c *domain.Competition) bool {
	if len(c.Rounds) == 0 || len(c.Officials.Judges) == 0 {
		return false
	}
	round := c.Rounds[0]
	judge := c.Officials.Judges[0].Code
	bibs := round.Data.Bibs()
	if len(bibs) == 0 {
		return false
	}
	dances := round.Dances
	if len(dances) == 0 {
		dances = c.Dances
	}
	switch data := round.Data.(type) {
	case domain.MarkingData:
		delete(data[judge][bibs[0]], dances[0])
	case domain.DTVData:
		delete(data[judge][bibs[0]], dances[0])
	case domain.WDSFData:
		delete(data[judge], bibs[0])
	default:
		return false
	}
	return true
}

func corruptTotal(c *domain.Competition) bool {
	last, ok := c.LastRound()
	if !ok {
		return false
	}
	data, ok := last.Data.(domain.WDSFData)
	if !ok || len(c.Officials.Judges) == 0 {
		return false
	}
	judge := c.Officials.Judges[0].Code
	bibs := data.Bibs()
	if len(bibs) == 0 {
		return false
	}
	score := data[judge][bibs[0]]
	score.Total = score.Sum() + 3
	data[judge][bibs[0]] = score
	return true
}

// teleport enters a couple in the final that never danced the first round.
func teleport(c *domain.Competition) bool {
	if len(c.Rounds) < 2 || len(c.Participants) == 0 {
		return false
	}
	last := c.Rounds[len(c.Rounds)-1]
	bib := slices.MaxFunc(c.Participants, func(a, b domain.Participant) int { return int(a.Bib - b.Bib) }).Bib + 1
	switch data := last.Data.(type) {
	case domain.DTVData:
		place := len(data.Bibs()) + 1
		for judge := range data {
			data[judge][bib] = map[domain.Dance]int{}
			for _, dance := range last.Dances {
				data[judge][bib][dance] = place
			}
		}
	case domain.WDSFData:
		for judge := range data {
			data[judge][bib] = domain.WDSFScore{
				TechnicalQuality: 5, MovementToMusic: 5, PartneringSkills: 5, Choreography: 5, Total: 5,
			}
		}
	default:
		return false
	}
	c.Participants = append(c.Participants, domain.Participant{Kind: domain.Couple, NameOne: "Walk-in", Bib: bib})
	return true
}

// promoteEliminated declares an eliminated couple the winner.
func promoteEliminated(c *domain.Competition) bool {
	last, ok := c.LastRound()
	if !ok || len(c.Rounds) < 2 {
		return false
	}
	final := last.Data.Bibs()
	for i, p := range c.Participants {
		if !slices.Contains(final, p.Bib) {
			winner := 1
			c.Participants[i].FinalRank = &winner
			return true
		}
	}
	return false
}

// swapRanks exchanges the declared ranks of the two best differently
// placed finalists of a placement final.
func swapRanks(c *domain.Competition) bool {
	last, ok := c.LastRound()
	if !ok || last.Data.Kind() != domain.KindDTV {
		return false
	}
	final := last.Data.Bibs()
	var idx []int
	for i, p := range c.Participants {
		if p.FinalRank != nil && slices.Contains(final, p.Bib) {
			idx = append(idx, i)
		}
	}
	slices.SortFunc(idx, func(a, b int) int {
		return *c.Participants[a].FinalRank - *c.Participants[b].FinalRank
	})
	for k := 1; k < len(idx); k++ {
		a, b := &c.Participants[idx[0]], &c.Participants[idx[k]]
		if *a.FinalRank != *b.FinalRank {
			a.FinalRank, b.FinalRank = b.FinalRank, a.FinalRank
			return true
		}
	}
	return false
}
