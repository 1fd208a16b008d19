package domain

// RankAggregator turns raw judge placements into consensus ranks.
// Implementations must be pure: identical input yields identical output and
// no state is shared between calls, so one value may serve many goroutines.
type RankAggregator interface {
	// RankDance computes the consensus rank of every bib in a single dance
	// from judge -> bib -> placement. Tied bibs report the lowest rank of
	// their tie block. It returns an error when no judge supplied marks.
	RankDance(marks map[JudgeCode]map[Bib]int) (map[Bib]int, error)

	// RankOverall combines per-dance ranks into the overall result. raw may
	// be nil; when present it is used to break equal rank sums.
	RankOverall(danceRanks map[Dance]map[Bib]int, raw map[Dance]map[JudgeCode]map[Bib]int) map[Bib]int
}
