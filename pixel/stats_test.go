package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ramp(t *testing.T, values []float64) *Image {
	t.Helper()
	img, err := New(len(values), 1, 1, F32)
	require.NoError(t, err)
	for x, v := range values {
		img.Set(x, 0, 0, v)
	}
	return img
}

func TestMinMaxLocationsFirstOccurrence(t *testing.T) {
	img := ramp(t, []float64{5, 1, 9, 1, 9})
	res, err := img.MinMaxLocations(nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, res.Min[0])
	require.Equal(t, Point{1, 0}, res.MinLoc[0])
	require.Equal(t, 9.0, res.Max[0])
	require.Equal(t, Point{2, 0}, res.MaxLoc[0])
}

func TestMeanAndMeanStdDev(t *testing.T) {
	img := ramp(t, []float64{2, 4, 4, 4, 5, 5, 7, 9})
	mean, err := img.Mean(nil)
	require.NoError(t, err)
	require.InDelta(t, 5.0, mean[0], 1e-9)

	_, std, err := img.MeanStdDev(nil, false)
	require.NoError(t, err)
	require.InDelta(t, 2.0, std[0], 1e-9)
}

func TestMeanStdDevSampleCorrection(t *testing.T) {
	img := ramp(t, []float64{1, 2})
	_, pop, err := img.MeanStdDev(nil, false)
	require.NoError(t, err)
	_, sample, err := img.MeanStdDev(nil, true)
	require.NoError(t, err)
	require.Greater(t, sample[0], pop[0])
}

func TestMeanHonorsMask(t *testing.T) {
	img := ramp(t, []float64{100, 0})
	mask, err := New(2, 1, 1, U8)
	require.NoError(t, err)
	mask.Set(0, 0, 0, 1)
	mask.Set(1, 0, 0, 0)

	mean, err := img.Mean(mask)
	require.NoError(t, err)
	require.Equal(t, 100.0, mean[0])
}

func TestUniqueWithCount(t *testing.T) {
	img := ramp(t, []float64{3, 1, 3, 2, 1, 1})
	uniq, err := img.UniqueWithCount(nil)
	require.NoError(t, err)
	require.Equal(t, []ValueCount{{Value: 1, Count: 3}, {Value: 2, Count: 1}, {Value: 3, Count: 2}}, uniq[0])
}
