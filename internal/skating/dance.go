// Package skating implements the Skating System, the majority-based
// rank aggregation used by ballroom scrutineers to turn per-judge placements
// into one consensus rank per dance and per competition.
//
// Every function in this package is pure and deterministic. Nothing is
// shared between calls, so the calculator may be used from any number of
// goroutines without synchronization.
package skating

import (
	"errors"
	"maps"
	"slices"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// ErrNoJudges is returned when a dance is ranked without any judge marks.
var ErrNoJudges = errors.New("no judge marks to rank")

// tally is one bib's standing at a placement threshold: how many judges
// placed it at or above the threshold and the sum of those placements.
type tally struct {
	bib   domain.Bib
	count int
	sum   int
}

// RankSingleDance computes the consensus rank of every bib in one dance
// from judge -> bib -> placement.
//
// For each threshold r = 1..N, bibs holding a majority of placements at or
// better than r are ordered by majority size (larger first) and then by
// the sum of those placements (smaller first). Bibs separated by this
// ordering take the next places. An unresolved tie defers to r+1 unless r
// has reached N, in which case the tied bibs share the place. Tied bibs
// report the lowest rank of their block and the following bib resumes
// after the whole block.
//
// Non-permutation input (duplicate placements from one judge) is ranked on
// a best-effort basis rather than rejected.
func RankSingleDance(marks map[domain.JudgeCode]map[domain.Bib]int) (map[domain.Bib]int, error) {
	if len(marks) == 0 {
		return nil, ErrNoJudges
	}

	seen := make(map[domain.Bib]struct{})
	for _, byBib := range marks {
		for bib := range byBib {
			seen[bib] = struct{}{}
		}
	}
	remaining := slices.Sorted(maps.Keys(seen))

	n := len(remaining)
	majority := len(marks)/2 + 1
	ranks := make(map[domain.Bib]int, n)
	place := 1

	for r := 1; r <= n && len(remaining) > 0; r++ {
		candidates := make([]tally, 0, len(remaining))
		for _, bib := range remaining {
			t := tally{bib: bib}
			for _, byBib := range marks {
				if m, ok := byBib[bib]; ok && m <= r {
					t.count++
					t.sum += m
				}
			}
			if t.count >= majority {
				candidates = append(candidates, t)
			}
		}
		slices.SortStableFunc(candidates, func(a, b tally) int {
			if a.count != b.count {
				return b.count - a.count
			}
			return a.sum - b.sum
		})

		for i := 0; i < len(candidates); {
			j := i + 1
			for j < len(candidates) && candidates[j].count == candidates[i].count && candidates[j].sum == candidates[i].sum {
				j++
			}
			if j-i > 1 && r < n {
				// Unresolved tie: later thresholds may still separate it.
				break
			}
			for _, t := range candidates[i:j] {
				ranks[t.bib] = place
				remaining = slices.DeleteFunc(remaining, func(b domain.Bib) bool { return b == t.bib })
			}
			place += j - i
			i = j
		}
	}

	for _, bib := range remaining {
		ranks[bib] = place
	}
	return ranks, nil
}
