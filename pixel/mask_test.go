package pixel

import (
	"testing"

	"github.com/airbusgeo/imagefusion/interval"
	"github.com/stretchr/testify/require"
)

func TestSingleChannelMaskAndAccumulate(t *testing.T) {
	img, err := New(2, 1, 2, U8)
	require.NoError(t, err)
	// pixel 0: both channels in range; pixel 1: only channel 0 in range.
	img.Set(0, 0, 0, 5)
	img.Set(0, 0, 1, 5)
	img.Set(1, 0, 0, 5)
	img.Set(1, 0, 1, 50)

	ranges := []interval.Set{interval.NewSet(interval.Closed(0, 10)), interval.NewSet(interval.Closed(0, 10))}
	mask, err := img.CreateSingleChannelMaskFromRange(ranges, true)
	require.NoError(t, err)
	require.Equal(t, 1.0, mask.At(0, 0, 0))
	require.Equal(t, 0.0, mask.At(1, 0, 0))
}

func TestSingleChannelMaskOrAccumulate(t *testing.T) {
	img, err := New(1, 1, 2, U8)
	require.NoError(t, err)
	img.Set(0, 0, 0, 5)
	img.Set(0, 0, 1, 50)

	ranges := []interval.Set{interval.NewSet(interval.Closed(0, 10)), interval.NewSet(interval.Closed(0, 10))}
	mask, err := img.CreateSingleChannelMaskFromRange(ranges, false)
	require.NoError(t, err)
	require.Equal(t, 1.0, mask.At(0, 0, 0), "OR accumulation should pass when any channel matches")
}

func TestMultiChannelMaskGatesEachChannelIndependently(t *testing.T) {
	img, err := New(1, 1, 2, U8)
	require.NoError(t, err)
	img.Set(0, 0, 0, 5)
	img.Set(0, 0, 1, 50)

	ranges := []interval.Set{interval.NewSet(interval.Closed(0, 10)), interval.NewSet(interval.Closed(0, 10))}
	mask, err := img.CreateMultiChannelMaskFromRange(ranges)
	require.NoError(t, err)
	require.Equal(t, 1.0, mask.At(0, 0, 0))
	require.Equal(t, 0.0, mask.At(0, 0, 1))
}

func TestMaskRangeCountMismatch(t *testing.T) {
	img, err := New(1, 1, 2, U8)
	require.NoError(t, err)
	_, err = img.CreateSingleChannelMaskFromRange([]interval.Set{interval.NewSet(interval.Closed(0, 10))}, true)
	require.Error(t, err)
}

func TestIntegerMaskOpenBoundExcludesAdjacentIntegers(t *testing.T) {
	img, err := New(1, 1, 1, U8)
	require.NoError(t, err)
	img.Set(0, 0, 0, 5)

	// Open(0,5) on an integer type should exclude 5.
	mask, err := img.CreateSingleChannelMaskFromRange([]interval.Set{interval.NewSet(interval.Open(0, 5))}, true)
	require.NoError(t, err)
	require.Equal(t, 0.0, mask.At(0, 0, 0))
}
