package skating

import (
	"cmp"
	"maps"
	"slices"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// RankOverall combines per-dance ranks into the overall result.
//
// Bibs are ordered by the sum of their dance ranks. Equal sums are broken,
// when raw is non-nil, by pooling every placement each tied bib received
// across all dances and judges and comparing the pools threshold by
// threshold (see compareMarks). Bibs that remain inseparable share a rank
// in skip style, and keep ascending bib order among themselves.
func RankOverall(
	danceRanks map[domain.Dance]map[domain.Bib]int,
	raw map[domain.Dance]map[domain.JudgeCode]map[domain.Bib]int,
) map[domain.Bib]int {
	sums := make(map[domain.Bib]int)
	for _, ranks := range danceRanks {
		for bib, rank := range ranks {
			sums[bib] += rank
		}
	}

	var pools map[domain.Bib][]int
	if raw != nil {
		pools = poolMarks(raw)
	}

	order := func(a, b domain.Bib) int {
		if c := cmp.Compare(sums[a], sums[b]); c != 0 {
			return c
		}
		if pools == nil {
			return 0
		}
		return compareMarks(pools[a], pools[b])
	}

	bibs := slices.Sorted(maps.Keys(sums))
	slices.SortStableFunc(bibs, order)

	ranks := make(map[domain.Bib]int, len(bibs))
	for i := 0; i < len(bibs); {
		j := i + 1
		for j < len(bibs) && order(bibs[i], bibs[j]) == 0 {
			j++
		}
		for _, bib := range bibs[i:j] {
			ranks[bib] = i + 1
		}
		i = j
	}
	return ranks
}

// poolMarks collects every placement per bib across dances and judges.
func poolMarks(raw map[domain.Dance]map[domain.JudgeCode]map[domain.Bib]int) map[domain.Bib][]int {
	pools := make(map[domain.Bib][]int)
	for _, byJudge := range raw {
		for _, byBib := range byJudge {
			for bib, mark := range byBib {
				pools[bib] = append(pools[bib], mark)
			}
		}
	}
	return pools
}

// compareMarks orders two pooled mark sets. Starting at threshold 1, once
// either pool holds a majority of marks at or better than the threshold,
// the pool with more such marks wins; equal counts fall back to the lower
// sum of those marks. It returns a negative value when a ranks ahead of b
// and zero when no threshold separates them.
func compareMarks(a, b []int) int {
	if len(a) == 0 {
		return 0
	}
	majority := len(a)/2 + 1
	maxMark := 0
	for _, m := range slices.Concat(a, b) {
		maxMark = max(maxMark, m)
	}

	for r := 1; r <= maxMark; r++ {
		countA, sumA := atOrBetter(a, r)
		countB, sumB := atOrBetter(b, r)
		if countA < majority && countB < majority {
			continue
		}
		if countA != countB {
			return countB - countA
		}
		if sumA != sumB {
			return sumA - sumB
		}
	}
	return 0
}

func atOrBetter(marks []int, r int) (count, sum int) {
	for _, m := range marks {
		if m <= r {
			count++
			sum += m
		}
	}
	return count, sum
}
