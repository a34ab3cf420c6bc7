package starfm

import (
	"context"
	"testing"

	"github.com/airbusgeo/imagefusion/multires"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/stretchr/testify/require"
)

func uniform(t *testing.T, v float64) *pixel.Image {
	t.Helper()
	img, err := pixel.New(5, 5, 1, pixel.U8)
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, 0, v)
		}
	}
	return img
}

func TestSinglePairZeroDiffCopies(t *testing.T) {
	images := multires.New()
	images.Set("high", 1, uniform(t, 100))
	images.Set("low", 1, uniform(t, 100))
	images.Set("low", 2, uniform(t, 100))

	f := New(images, Options{
		HighTag: "high", LowTag: "low",
		Date1: 1, WinSize: 3, NumberClasses: 4,
		SpectralUncertainty: 2, TemporalUncertainty: 2,
		DoCopyOnZeroDiff: true,
	})
	require.NoError(t, f.ProcessOptions())
	out, err := f.Predict(context.Background(), 2, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 100.0, out.At(2, 2, 0))
}

func TestDoublePairNoCandidateFallsBackToPairAverage(t *testing.T) {
	images := multires.New()
	date3 := int64(3)
	images.Set("high", 1, uniform(t, 50))
	images.Set("low", 1, uniform(t, 50))
	images.Set("high", 3, uniform(t, 150))
	images.Set("low", 3, uniform(t, 150))
	images.Set("low", 2, uniform(t, 100))

	f := New(images, Options{
		HighTag: "high", LowTag: "low",
		Date1: 1, Date3: &date3, WinSize: 3, NumberClasses: 4,
		SpectralUncertainty: 2, TemporalUncertainty: 2,
		DoCopyOnZeroDiff: false,
	})
	require.NoError(t, f.ProcessOptions())
	out, err := f.Predict(context.Background(), 2, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 100.0, out.At(2, 2, 0))
}

func TestProcessOptionsRejectsEvenWinSize(t *testing.T) {
	f := New(multires.New(), Options{HighTag: "high", LowTag: "low", WinSize: 4, NumberClasses: 1})
	require.Error(t, f.ProcessOptions())
}

func TestPredictRejectsMismatchedPredictMask(t *testing.T) {
	images := multires.New()
	images.Set("high", 1, uniform(t, 100))
	images.Set("low", 1, uniform(t, 100))
	images.Set("low", 2, uniform(t, 100))

	f := New(images, Options{
		HighTag: "high", LowTag: "low",
		Date1: 1, WinSize: 3, NumberClasses: 4,
		SpectralUncertainty: 2, TemporalUncertainty: 2,
	})
	require.NoError(t, f.ProcessOptions())

	wrongSize, err := pixel.New(2, 2, 1, pixel.U8)
	require.NoError(t, err)
	_, err = f.Predict(context.Background(), 2, nil, wrongSize)
	require.Error(t, err)

	wrongType, err := pixel.New(5, 5, 1, pixel.U16)
	require.NoError(t, err)
	_, err = f.Predict(context.Background(), 2, nil, wrongType)
	require.Error(t, err)
}
