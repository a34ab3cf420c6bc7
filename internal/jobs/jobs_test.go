package jobs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitBracketsTargetsBetweenPairs(t *testing.T) {
	js := Split([]int64{10, 20, 30}, []int64{15, 25}, 0)
	require.Len(t, js, 2)

	byLeft := map[int64]Job{}
	for _, j := range js {
		byLeft[j.PairLeft] = j
	}
	require.Equal(t, []int64{15}, byLeft[10].Targets)
	require.True(t, byLeft[10].HasRight)
	require.Equal(t, int64(20), byLeft[10].PairRight)
	require.Equal(t, []int64{25}, byLeft[20].Targets)
}

func TestSplitExtrapolatesOutsideThePairRange(t *testing.T) {
	js := Split([]int64{10, 20}, []int64{5, 25}, 0)
	require.Len(t, js, 2)
	for _, j := range js {
		if j.HasLeft && !j.HasRight {
			require.Equal(t, []int64{25}, j.Targets)
		}
		if !j.HasLeft && j.HasRight {
			require.Equal(t, []int64{5}, j.Targets)
		}
	}
}

func TestSplitTagsSTAARCHOnlyPastDisturbanceWindow(t *testing.T) {
	js := Split([]int64{10, 100}, []int64{50}, 30)
	require.Len(t, js, 1)
	require.Equal(t, STAARCHAlgorithm, js[0].Algorithm)

	js = Split([]int64{10, 20}, []int64{15}, 30)
	require.Len(t, js, 1)
	require.Equal(t, STARFMAlgorithm, js[0].Algorithm)
}

func TestSplitEmptyInputs(t *testing.T) {
	require.Nil(t, Split(nil, []int64{1}, 0))
	require.Nil(t, Split([]int64{1}, nil, 0))
}
