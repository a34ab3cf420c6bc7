package interval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntervalContains(t *testing.T) {
	closed := Closed(0, 10)
	require.True(t, closed.Contains(0))
	require.True(t, closed.Contains(10))

	open := Open(0, 10)
	require.False(t, open.Contains(0))
	require.False(t, open.Contains(10))
	require.True(t, open.Contains(5))
}

func TestSetUnionMerges(t *testing.T) {
	s := NewSet(Closed(0, 5), Closed(4, 10))
	ivs := s.Intervals()
	require.Len(t, ivs, 1, "overlapping intervals should merge into one")
	require.Equal(t, 0.0, ivs[0].Lo)
	require.Equal(t, 10.0, ivs[0].Hi)
}

func TestSetDifference(t *testing.T) {
	s := NewSet(Closed(0, 10)).Difference(Closed(3, 7))
	require.False(t, s.Contains(5), "difference should remove the subtracted range")
	require.True(t, s.Contains(1))
	require.True(t, s.Contains(9))
}
