package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// danceRuleChangeYear is the first calendar year in which the raised
// minimum dance counts for the D and C levels apply.
const danceRuleChangeYear = 2026

// minimumDances holds {before the rule change, from the rule change on}.
var minimumDances = map[Level][2]int{
	LevelE: {3, 3},
	LevelD: {3, 4},
	LevelC: {4, 5},
	LevelB: {5, 5},
	LevelA: {5, 5},
	LevelS: {5, 5},
}

// MinimumDances returns the number of dances a competition at level must
// contest on the given date. Unknown levels require no minimum.
func MinimumDances(level Level, date time.Time) int {
	counts, ok := minimumDances[level]
	if !ok {
		return 0
	}
	if date.Year() >= danceRuleChangeYear {
		return counts[1]
	}
	return counts[0]
}

// redanceMarkers are the case-folded name fragments of supplementary rounds.
var redanceMarkers = []string{"redance", "hoffnung", "h-lauf"}

// IsRedance reports whether a round name denotes a redance (repechage) round.
func IsRedance(name string) bool {
	// A Caser carries state, so each call gets its own.
	folded := cases.Fold().String(name)
	for _, marker := range redanceMarkers {
		if strings.Contains(folded, marker) {
			return true
		}
	}
	return false
}
