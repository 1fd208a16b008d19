package skating

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// marksFrom builds judge -> bib -> placement from (judge, bib, mark) triples.
func marksFrom(triples ...any) map[domain.JudgeCode]map[domain.Bib]int {
	out := make(map[domain.JudgeCode]map[domain.Bib]int)
	for i := 0; i+2 < len(triples); i += 3 {
		j := domain.JudgeCode(triples[i].(string))
		if out[j] == nil {
			out[j] = make(map[domain.Bib]int)
		}
		out[j][domain.Bib(triples[i+1].(int))] = triples[i+2].(int)
	}
	return out
}

func TestRankSingleDance(t *testing.T) {
	tests := []struct {
		name  string
		marks map[domain.JudgeCode]map[domain.Bib]int
		want  map[domain.Bib]int
	}{
		{
			name: "unanimous placements",
			marks: marksFrom(
				"A", 101, 1, "A", 102, 2,
				"B", 101, 1, "B", 102, 2,
				"C", 101, 1, "C", 102, 2,
			),
			want: map[domain.Bib]int{101: 1, 102: 2},
		},
		{
			name: "larger majority wins",
			marks: marksFrom(
				"A", 101, 1, "A", 102, 2,
				"B", 101, 1, "B", 102, 1,
				"C", 101, 1, "C", 102, 1,
				"D", 101, 2, "D", 102, 2,
				"E", 101, 2, "E", 102, 2,
			),
			want: map[domain.Bib]int{101: 1, 102: 2},
		},
		{
			name: "equal majority separated by lower sum",
			marks: marksFrom(
				"A", 101, 1, "A", 102, 1,
				"B", 101, 1, "B", 102, 2,
				"C", 101, 2, "C", 102, 2,
				"D", 101, 2, "D", 102, 2,
				"E", 101, 3, "E", 102, 3,
			),
			want: map[domain.Bib]int{101: 1, 102: 2},
		},
		{
			name: "identical marks share the place",
			marks: marksFrom(
				"A", 101, 1, "A", 102, 1,
				"B", 101, 1, "B", 102, 1,
				"C", 101, 1, "C", 102, 1,
			),
			want: map[domain.Bib]int{101: 1, 102: 1},
		},
		{
			name: "tie block skips the following place",
			marks: marksFrom(
				"A", 101, 1, "A", 102, 2, "A", 103, 3,
				"B", 101, 2, "B", 102, 1, "B", 103, 3,
				"C", 101, 1, "C", 102, 2, "C", 103, 3,
				"D", 101, 2, "D", 102, 1, "D", 103, 3,
			),
			want: map[domain.Bib]int{101: 1, 102: 1, 103: 3},
		},
		{
			name: "tie deferred to next threshold is resolved there",
			// At r=1 nobody holds a majority of three. At r=2 both 101 and 102
			// hold 2 marks summing to 3, so they defer; r=3 separates them
			// because 101 has a third mark of 3 and 102 has a 4.
			marks: marksFrom(
				"A", 101, 1, "A", 102, 2, "A", 103, 3, "A", 104, 4,
				"B", 101, 2, "B", 102, 1, "B", 103, 4, "B", 104, 3,
				"C", 101, 3, "C", 102, 4, "C", 103, 1, "C", 104, 2,
			),
			want: map[domain.Bib]int{101: 1, 102: 2, 103: 3, 104: 4},
		},
		{
			name:  "single judge",
			marks: marksFrom("A", 7, 2, "A", 9, 1),
			want:  map[domain.Bib]int{9: 1, 7: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RankSingleDance(tt.marks)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RankSingleDance() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRankSingleDance_NoJudges(t *testing.T) {
	_, err := RankSingleDance(nil)
	assert.ErrorIs(t, err, ErrNoJudges)

	_, err = Calculator{}.RankDance(map[domain.JudgeCode]map[domain.Bib]int{})
	assert.ErrorIs(t, err, ErrNoJudges)
}

func TestRankSingleDance_ToleratesDuplicatePlacements(t *testing.T) {
	marks := marksFrom(
		"A", 101, 1, "A", 102, 1, "A", 103, 3,
		"B", 101, 1, "B", 102, 2, "B", 103, 2,
		"C", 101, 2, "C", 102, 1, "C", 103, 3,
	)
	got, err := RankSingleDance(marks)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, got[103], "bib with the weakest marks should finish last")
}

// randomPanel gives each of j judges a random permutation of n bibs starting at 101.
func randomPanel(rng *rand.Rand, j, n int) map[domain.JudgeCode]map[domain.Bib]int {
	marks := make(map[domain.JudgeCode]map[domain.Bib]int, j)
	for i := range j {
		perm := rng.Perm(n)
		byBib := make(map[domain.Bib]int, n)
		for b, p := range perm {
			byBib[domain.Bib(101+b)] = p + 1
		}
		marks[domain.JudgeCode(rune('A'+i))] = byBib
	}
	return marks
}

// assertSkipStyle checks that ranks start at 1, tied blocks report their
// lowest number and every number of 1..N is either reported or skipped by a block.
func assertSkipStyle(t *testing.T, ranks map[domain.Bib]int, n int) {
	t.Helper()
	require.Len(t, ranks, n)
	values := make([]int, 0, n)
	for _, r := range ranks {
		values = append(values, r)
	}
	slices.Sort(values)
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			require.Equal(t, i+1, v, "block starting at position %d must report %d: %v", i, i+1, values)
		}
	}
}

func TestRankSingleDance_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for judges := 1; judges <= 7; judges++ {
		for bibs := 1; bibs <= 8; bibs++ {
			for trial := range 5 {
				marks := randomPanel(rng, judges, bibs)
				t.Run(fmt.Sprintf("J%d_N%d_%d", judges, bibs, trial), func(t *testing.T) {
					got, err := RankSingleDance(marks)
					require.NoError(t, err)
					assertSkipStyle(t, got, bibs)

					again, err := RankSingleDance(marks)
					require.NoError(t, err)
					assert.Equal(t, got, again, "ranking must be idempotent")
				})
			}
		}
	}
}

func TestRankSingleDance_MajorityMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for trial := range 200 {
		judges := 1 + rng.IntN(7)
		bibs := 2 + rng.IntN(6)
		marks := randomPanel(rng, judges, bibs)
		// Every judge places 101 strictly ahead of 102.
		for _, byBib := range marks {
			if byBib[101] > byBib[102] {
				byBib[101], byBib[102] = byBib[102], byBib[101]
			}
		}
		got, err := RankSingleDance(marks)
		require.NoError(t, err)
		assert.LessOrEqual(t, got[101], got[102], "trial %d: %v", trial, marks)
	}
}
