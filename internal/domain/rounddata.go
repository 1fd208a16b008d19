package domain

import (
	"maps"
	"slices"
)

// RoundKind names the shape of a round's officiating data.
type RoundKind string

const (
	// KindMarking is a qualification round: judges cross the couples they
	// want to see in the next round.
	KindMarking RoundKind = "marking"
	// KindDTV is a placement round: every judge places every couple per dance.
	KindDTV RoundKind = "dtv"
	// KindWDSF is a category-score round judged under the WDSF absolute system.
	KindWDSF RoundKind = "wdsf"
)

// RoundData is the officiating data recorded for one round. It is a closed
// set: the only implementations are MarkingData, DTVData and WDSFData, and
// consumers dispatch on them with a type switch.
type RoundData interface {
	// Kind reports which of the three shapes this is.
	Kind() RoundKind
	// Bibs returns the sorted bib numbers that carry at least one data cell.
	Bibs() []Bib
	// Cells reports the number of recorded values.
	Cells() int

	sealed()
}

// MarkingData maps judge -> bib -> dance -> qualified.
type MarkingData map[JudgeCode]map[Bib]map[Dance]bool

// DTVData maps judge -> bib -> dance -> placement (1 is best).
type DTVData map[JudgeCode]map[Bib]map[Dance]int

// WDSFData maps judge -> bib -> category scores. Scores are not decomposed by dance.
type WDSFData map[JudgeCode]map[Bib]WDSFScore

// WDSFScore holds the four WDSF judging categories and the total the
// scrutineer reported for them. A zero Total means no total was published.
type WDSFScore struct {
	TechnicalQuality float64 `json:"technical_quality" yaml:"technical_quality"`
	MovementToMusic  float64 `json:"movement_to_music" yaml:"movement_to_music"`
	PartneringSkills float64 `json:"partnering_skills" yaml:"partnering_skills"`
	Choreography     float64 `json:"choreography" yaml:"choreography"`
	Total            float64 `json:"total" yaml:"total"`
}

// Sum returns the straight sum of the four categories.
func (s WDSFScore) Sum() float64 {
	return s.TechnicalQuality + s.MovementToMusic + s.PartneringSkills + s.Choreography
}

// Mean returns the arithmetic mean of the four categories.
func (s WDSFScore) Mean() float64 { return s.Sum() / 4 }

func (MarkingData) Kind() RoundKind { return KindMarking }
func (DTVData) Kind() RoundKind     { return KindDTV }
func (WDSFData) Kind() RoundKind    { return KindWDSF }

func (MarkingData) sealed() {}
func (DTVData) sealed()     {}
func (WDSFData) sealed()    {}

func (m MarkingData) Bibs() []Bib {
	seen := make(map[Bib]struct{})
	for _, byBib := range m {
		for bib, byDance := range byBib {
			if len(byDance) > 0 {
				seen[bib] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

func (m DTVData) Bibs() []Bib {
	seen := make(map[Bib]struct{})
	for _, byBib := range m {
		for bib, byDance := range byBib {
			if len(byDance) > 0 {
				seen[bib] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

func (m WDSFData) Bibs() []Bib {
	seen := make(map[Bib]struct{})
	for _, byBib := range m {
		for bib := range byBib {
			seen[bib] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

func (m MarkingData) Cells() int {
	n := 0
	for _, byBib := range m {
		for _, byDance := range byBib {
			n += len(byDance)
		}
	}
	return n
}

func (m DTVData) Cells() int {
	n := 0
	for _, byBib := range m {
		for _, byDance := range byBib {
			n += len(byDance)
		}
	}
	return n
}

func (m WDSFData) Cells() int {
	n := 0
	for _, byBib := range m {
		n += len(byBib)
	}
	return n
}

// ByDance regroups the placements as dance -> judge -> bib -> placement,
// the layout the skating calculator consumes.
func (m DTVData) ByDance() map[Dance]map[JudgeCode]map[Bib]int {
	out := make(map[Dance]map[JudgeCode]map[Bib]int)
	for judge, byBib := range m {
		for bib, byDance := range byBib {
			for dance, place := range byDance {
				byJudge, ok := out[dance]
				if !ok {
					byJudge = make(map[JudgeCode]map[Bib]int)
					out[dance] = byJudge
				}
				marks, ok := byJudge[judge]
				if !ok {
					marks = make(map[Bib]int)
					byJudge[judge] = marks
				}
				marks[bib] = place
			}
		}
	}
	return out
}

// JudgeCodes returns the sorted judge codes present in data.
func JudgeCodes(data RoundData) []JudgeCode {
	var codes []JudgeCode
	switch d := data.(type) {
	case MarkingData:
		codes = slices.Collect(maps.Keys(d))
	case DTVData:
		codes = slices.Collect(maps.Keys(d))
	case WDSFData:
		codes = slices.Collect(maps.Keys(d))
	}
	slices.Sort(codes)
	return codes
}
