package fidelity

import (
	"github.com/ahrav/go-scrutineer/internal/domain"
)

var testDances = []domain.Dance{domain.SlowWaltz, domain.Tango}

func rank(n int) *int { return &n }

func couple(bib domain.Bib, finalRank *int) domain.Participant {
	return domain.Participant{Kind: domain.Couple, NameOne: "Lead", Bib: bib, FinalRank: finalRank}
}

// markingRound crosses every listed bib for every judge and dance.
func markingRound(name string, judges []domain.JudgeCode, bibs ...domain.Bib) domain.Round {
	data := domain.MarkingData{}
	for _, j := range judges {
		data[j] = map[domain.Bib]map[domain.Dance]bool{}
		for _, bib := range bibs {
			data[j][bib] = map[domain.Dance]bool{}
			for _, d := range testDances {
				data[j][bib][d] = true
			}
		}
	}
	return domain.Round{Name: name, Dances: testDances, Data: data}
}

// placementRound has every judge place the bibs in the given order in every dance.
func placementRound(name string, judges []domain.JudgeCode, order ...domain.Bib) domain.Round {
	data := domain.DTVData{}
	for _, j := range judges {
		data[j] = map[domain.Bib]map[domain.Dance]int{}
		for place, bib := range order {
			data[j][bib] = map[domain.Dance]int{}
			for _, d := range testDances {
				data[j][bib][d] = place + 1
			}
		}
	}
	return domain.Round{Name: name, Dances: testDances, Data: data}
}

func scoreRound(name string, judges []domain.JudgeCode, score domain.WDSFScore, bibs ...domain.Bib) domain.Round {
	data := domain.WDSFData{}
	for _, j := range judges {
		data[j] = map[domain.Bib]domain.WDSFScore{}
		for _, bib := range bibs {
			data[j][bib] = score
		}
	}
	return domain.Round{Name: name, Dances: testDances, Data: data}
}

var panel = []domain.JudgeCode{"A", "B", "C"}

// newCompetition builds a valid two-dance competition: a first round with
// three couples and a placement final in which 101 beats 102 unanimously.
func newCompetition() *domain.Competition {
	judges := make([]domain.Judge, len(panel))
	for i, code := range panel {
		judges[i] = domain.Judge{Code: code, Name: "Judge " + string(code)}
	}
	return &domain.Competition{
		Name:      "Adult D Standard",
		Level:     domain.LevelD,
		AgeGroup:  domain.Adult,
		Style:     domain.StyleStandard,
		Dances:    testDances,
		MinDances: 2,
		Officials: domain.Officials{Judges: judges},
		Participants: []domain.Participant{
			couple(101, rank(1)),
			couple(102, rank(2)),
			couple(103, nil),
		},
		Rounds: []domain.Round{
			markingRound("1. Vorrunde", panel, 101, 102, 103),
			placementRound("Finale", panel, 101, 102),
		},
	}
}
