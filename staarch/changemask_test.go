package staarch

import (
	"testing"

	"github.com/airbusgeo/imagefusion/interval"
	"github.com/stretchr/testify/require"
)

func TestConnectedDisturbanceRequiresAMatchingNeighbor(t *testing.T) {
	match := [][]bool{
		{false, false, false},
		{false, true, false},
		{false, false, false},
	}
	out := connectedDisturbance(match, EightConnected)
	require.False(t, out[1][1], "an isolated match with no matching neighbor should score exactly 10, not >10")
}

func TestConnectedDisturbanceAcceptsWithOneNeighbor(t *testing.T) {
	match := [][]bool{
		{false, false, false},
		{false, true, true},
		{false, false, false},
	}
	out := connectedDisturbance(match, FourConnected)
	require.True(t, out[1][1])
}

func TestRangeMatchHonorsOpenBounds(t *testing.T) {
	img := singlePixel(t, 5)
	closedMatch := rangeMatch(img, interval.Closed(5, 10))
	require.True(t, closedMatch[0][0])
	openMatch := rangeMatch(img, interval.Open(5, 10))
	require.False(t, openMatch[0][0])
}
