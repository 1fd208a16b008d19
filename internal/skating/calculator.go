package skating

import "github.com/ahrav/go-scrutineer/internal/domain"

var _ domain.RankAggregator = Calculator{}

// Calculator exposes the Skating System through domain.RankAggregator.
// The zero value is ready to use.
type Calculator struct{}

// RankDance implements domain.RankAggregator.
func (Calculator) RankDance(marks map[domain.JudgeCode]map[domain.Bib]int) (map[domain.Bib]int, error) {
	return RankSingleDance(marks)
}

// RankOverall implements domain.RankAggregator.
func (Calculator) RankOverall(
	danceRanks map[domain.Dance]map[domain.Bib]int,
	raw map[domain.Dance]map[domain.JudgeCode]map[domain.Bib]int,
) map[domain.Bib]int {
	return RankOverall(danceRanks, raw)
}
