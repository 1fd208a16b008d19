// Package testutils generates synthetic competition results for tests and
// fixture files. Generated competitions are internally consistent: every
// declared final rank of a placement final is recomputed with the Skating
// System from the generated placements, so a fresh competition passes the
// fidelity gate until a Mutation corrupts it.
package testutils

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/skating"
)

const (
	// DefaultFinalists is the size of a generated final.
	DefaultFinalists = 6

	minCouples = 4
	maxCouples = 12

	// placementNoise is the spread of a judge's opinion around a couple's
	// skill, in skill steps.
	placementNoise = 1.5
)

// GeneratorConfig shapes the events produced by GenerateEvent.
type GeneratorConfig struct {
	Name string
	Date time.Time
	// Competitions is capped at the number of distinct competition keys.
	Competitions int
	// WDSFShare is the fraction of competitions whose final is scored
	// rather than placed.
	WDSFShare float64
}

// DefaultGeneratorConfig returns a small mixed event.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Name:         "Synthetic Open",
		Date:         time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC),
		Competitions: 8,
		WDSFShare:    0.25,
	}
}

type competitionKey struct {
	age   domain.AgeGroup
	level domain.Level
	style domain.Style
}

// GenerateEvent creates an event whose competitions have distinct keys.
// The same config and seed always produce the same event.
func GenerateEvent(cfg GeneratorConfig, seed uint64) *domain.Event {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	date := cfg.Date
	event := &domain.Event{Name: cfg.Name, Date: &date}
	for i, key := range pickKeys(rng, cfg.Competitions) {
		wdsf := rng.Float64() < cfg.WDSFShare
		event.Competitions = append(event.Competitions,
			generateCompetition(rng, key, date, domain.Bib(100*(i+1)), wdsf))
	}
	return event
}

func pickKeys(rng *rand.Rand, n int) []competitionKey {
	var keys []competitionKey
	for _, age := range domain.AgeGroups() {
		for _, level := range domain.Levels() {
			for _, style := range domain.Styles() {
				keys = append(keys, competitionKey{age, level, style})
			}
		}
	}
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	return keys[:min(max(n, 0), len(keys))]
}

func generateCompetition(
	rng *rand.Rand,
	key competitionKey,
	date time.Time,
	firstBib domain.Bib,
	wdsf bool,
) domain.Competition {
	minDances := domain.MinimumDances(key.level, date)
	all := key.style.DefaultDances()
	dances := all[:minDances+rng.IntN(len(all)-minDances+1)]

	judges := make([]domain.Judge, 3+2*rng.IntN(3))
	for i := range judges {
		code := domain.JudgeCode(string(rune('A' + i)))
		judges[i] = domain.Judge{Code: code, Name: "Judge " + string(code)}
	}
	panel := domain.Officials{Judges: judges}.JudgeCodes()

	n := minCouples + rng.IntN(maxCouples-minCouples+1)
	bibs := make([]domain.Bib, n)
	skill := make(map[domain.Bib]float64, n)
	for i, s := range rng.Perm(n) {
		bibs[i] = firstBib + domain.Bib(i+1)
		skill[bibs[i]] = float64(s)
	}

	finalists := bibs
	var rounds []domain.Round
	if n > DefaultFinalists {
		finalists = noisyOrder(rng, bibs, skill)[:DefaultFinalists]
		slices.Sort(finalists)
		rounds = append(rounds, markingRound(rng, "1. Vorrunde", panel, dances, bibs, skill, DefaultFinalists))
	}

	var final domain.Round
	var ranks map[domain.Bib]int
	if wdsf {
		final, ranks = wdsfFinal(rng, panel, dances, finalists, skill)
	} else {
		final, ranks = placementFinal(rng, panel, dances, finalists, skill)
	}
	final.Order = len(rounds)
	rounds = append(rounds, final)

	participants := make([]domain.Participant, n)
	for i, bib := range bibs {
		partner := fmt.Sprintf("Partner %d", bib)
		rank, ok := ranks[bib]
		if !ok {
			rank = len(finalists) + 1
		}
		participants[i] = domain.Participant{
			Kind:      domain.Couple,
			NameOne:   fmt.Sprintf("Leader %d", bib),
			NameTwo:   &partner,
			Bib:       bib,
			FinalRank: &rank,
		}
	}

	d := date
	return domain.Competition{
		Name:         fmt.Sprintf("%s %s %s", key.age, key.level, key.style),
		Date:         &d,
		Level:        key.level,
		AgeGroup:     key.age,
		Style:        key.style,
		Dances:       dances,
		MinDances:    minDances,
		Officials:    domain.Officials{Judges: judges},
		Participants: participants,
		Rounds:       rounds,
	}
}

// noisyOrder returns bibs ordered best first as one judge perceives them.
func noisyOrder(rng *rand.Rand, bibs []domain.Bib, skill map[domain.Bib]float64) []domain.Bib {
	perceived := make(map[domain.Bib]float64, len(bibs))
	for _, bib := range bibs {
		perceived[bib] = skill[bib] + rng.NormFloat64()*placementNoise
	}
	order := slices.Clone(bibs)
	slices.SortStableFunc(order, func(a, b domain.Bib) int {
		if perceived[a] > perceived[b] {
			return -1
		}
		if perceived[a] < perceived[b] {
			return 1
		}
		return 0
	})
	return order
}

// markingRound has every judge cross their top crosses couples in every dance.
func markingRound(
	rng *rand.Rand,
	name string,
	panel []domain.JudgeCode,
	dances []domain.Dance,
	bibs []domain.Bib,
	skill map[domain.Bib]float64,
	crosses int,
) domain.Round {
	data := domain.MarkingData{}
	for _, judge := range panel {
		data[judge] = make(map[domain.Bib]map[domain.Dance]bool, len(bibs))
		for _, bib := range bibs {
			data[judge][bib] = make(map[domain.Dance]bool, len(dances))
		}
		for _, dance := range dances {
			for place, bib := range noisyOrder(rng, bibs, skill) {
				data[judge][bib][dance] = place < crosses
			}
		}
	}
	return domain.Round{Name: name, Dances: dances, Data: data}
}

// placementFinal generates a DTV final and ranks it with the Skating System.
func placementFinal(
	rng *rand.Rand,
	panel []domain.JudgeCode,
	dances []domain.Dance,
	finalists []domain.Bib,
	skill map[domain.Bib]float64,
) (domain.Round, map[domain.Bib]int) {
	data := domain.DTVData{}
	for _, judge := range panel {
		data[judge] = make(map[domain.Bib]map[domain.Dance]int, len(finalists))
		for _, bib := range finalists {
			data[judge][bib] = make(map[domain.Dance]int, len(dances))
		}
		for _, dance := range dances {
			for place, bib := range noisyOrder(rng, finalists, skill) {
				data[judge][bib][dance] = place + 1
			}
		}
	}

	raw := data.ByDance()
	danceRanks := make(map[domain.Dance]map[domain.Bib]int, len(raw))
	for dance, marks := range raw {
		ranks, err := skating.RankSingleDance(marks)
		if err != nil {
			panic(fmt.Sprintf("rank generated %s: %v", dance, err))
		}
		danceRanks[dance] = ranks
	}
	return domain.Round{Name: "Finale", Dances: dances, Data: data}, skating.RankOverall(danceRanks, raw)
}

// wdsfFinal generates a scored final. Category scores sit on the quarter
// point grid and each total is the rounded mean. Ranks follow the summed
// totals, best first, with bib order deciding equal sums.
func wdsfFinal(
	rng *rand.Rand,
	panel []domain.JudgeCode,
	dances []domain.Dance,
	finalists []domain.Bib,
	skill map[domain.Bib]float64,
) (domain.Round, map[domain.Bib]int) {
	data := domain.WDSFData{}
	totals := make(map[domain.Bib]float64, len(finalists))
	for _, judge := range panel {
		data[judge] = make(map[domain.Bib]domain.WDSFScore, len(finalists))
		for _, bib := range finalists {
			base := 6 + 3*skill[bib]/float64(maxCouples)
			score := domain.WDSFScore{
				TechnicalQuality: category(rng, base),
				MovementToMusic:  category(rng, base),
				PartneringSkills: category(rng, base),
				Choreography:     category(rng, base),
			}
			score.Total = math.Round(score.Mean()*100) / 100
			data[judge][bib] = score
			totals[bib] += score.Total
		}
	}

	order := slices.Clone(finalists)
	slices.SortStableFunc(order, func(a, b domain.Bib) int {
		if totals[a] > totals[b] {
			return -1
		}
		if totals[a] < totals[b] {
			return 1
		}
		return int(a - b)
	})
	ranks := make(map[domain.Bib]int, len(order))
	for i, bib := range order {
		ranks[bib] = i + 1
	}
	return domain.Round{Name: "Finale", Dances: dances, Data: data}, ranks
}

func category(rng *rand.Rand, base float64) float64 {
	v := base + rng.NormFloat64()*0.5
	return math.Round(min(max(v, 1), 10)*4) / 4
}
