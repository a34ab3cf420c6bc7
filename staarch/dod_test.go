package staarch

import (
	"testing"

	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageWindowAlignments(t *testing.T) {
	lo, hi := movingAverageWindow(2, 5, 3, AlignLeft)
	require.Equal(t, 0, lo)
	require.Equal(t, 2, hi)

	lo, hi = movingAverageWindow(2, 5, 3, AlignRight)
	require.Equal(t, 2, lo)
	require.Equal(t, 4, hi)

	lo, hi = movingAverageWindow(2, 5, 3, AlignCenter)
	require.Equal(t, 1, lo)
	require.Equal(t, 3, hi)
}

func TestMovingAverageWindowWidthTwoCenterIsNoop(t *testing.T) {
	lo, hi := movingAverageWindow(2, 5, 2, AlignCenter)
	require.Equal(t, 2, lo)
	require.Equal(t, 2, hi)
}

func TestMovingAverageWindowClipsAtEdges(t *testing.T) {
	lo, hi := movingAverageWindow(0, 5, 3, AlignCenter)
	require.Equal(t, 0, lo)
	require.GreaterOrEqual(t, hi, lo)
}

func singlePixel(t *testing.T, v float64) *pixel.Image {
	t.Helper()
	img, err := pixel.New(1, 1, 1, pixel.F32)
	require.NoError(t, err)
	img.Set(0, 0, 0, v)
	return img
}

func TestAssignDoDPicksFirstExceedance(t *testing.T) {
	// A ramp from 0 to 5 over three dates: the threshold (min+(max-min)*0.5=2.5) is
	// first exceeded at the last date.
	imgs := []*pixel.Image{singlePixel(t, 0), singlePixel(t, 0), singlePixel(t, 5)}
	dates := []int64{10, 20, 30}
	changeMask := [][]bool{{true}}
	dod := assignDoD(imgs, dates, changeMask, 0.5)
	require.Equal(t, int32(30), dod[0][0])
}

func TestAssignDoDLeavesUnmaskedPixelsSentinel(t *testing.T) {
	imgs := []*pixel.Image{singlePixel(t, 0), singlePixel(t, 0), singlePixel(t, 5)}
	dates := []int64{10, 20, 30}
	changeMask := [][]bool{{false}}
	dod := assignDoD(imgs, dates, changeMask, 0.5)
	require.Equal(t, int32(DoDSentinel), dod[0][0])
}
