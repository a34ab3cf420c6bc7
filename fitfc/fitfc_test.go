package fitfc

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

func TestConstantImageDegenerateRegressionIsIdentity(t *testing.T) {
	images := multires.New()
	images.Set("high", 1, uniform(t, 200))
	images.Set("low", 1, uniform(t, 200))
	images.Set("low", 2, uniform(t, 200))

	f := New(images, Options{HighTag: "high", LowTag: "low", PairDate: 1, WinSize: 3, NumberNeighbors: 4, ResolutionFactor: 1})
	require.NoError(t, f.ProcessOptions())
	out, err := f.Predict(context.Background(), 2, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 200.0, out.At(2, 2, 0))
}

func TestLinearModelDegenerateRegressionAddsResidual(t *testing.T) {
	images := multires.New()
	images.Set("high", 1, uniform(t, 50))
	images.Set("low", 1, uniform(t, 0))
	images.Set("low", 2, uniform(t, 10))

	f := New(images, Options{HighTag: "high", LowTag: "low", PairDate: 1, WinSize: 3, NumberNeighbors: 4, ResolutionFactor: 1})
	require.NoError(t, f.ProcessOptions())
	out, err := f.Predict(context.Background(), 2, nil, nil)
	require.NoError(t, err)
	// determinant 0 over a uniform window falls back to a=1,b=0: frm=h1=50,
	// residual=lt-l1=10, so the output is their sum.
	require.Equal(t, 60.0, out.At(2, 2, 0))
}

func TestProcessOptionsClampsNeighborCount(t *testing.T) {
	images := multires.New()
	f := New(images, Options{HighTag: "high", LowTag: "low", PairDate: 1, WinSize: 3, NumberNeighbors: 100, ResolutionFactor: 1})
	require.NoError(t, f.ProcessOptions())
	require.Equal(t, 9, f.opts.NumberNeighbors)
}

func TestPredictRejectsMismatchedPredictMask(t *testing.T) {
	images := multires.New()
	images.Set("high", 1, uniform(t, 200))
	images.Set("low", 1, uniform(t, 200))
	images.Set("low", 2, uniform(t, 200))

	f := New(images, Options{HighTag: "high", LowTag: "low", PairDate: 1, WinSize: 3, NumberNeighbors: 4, ResolutionFactor: 1})
	require.NoError(t, f.ProcessOptions())

	wrongSize, err := pixel.New(2, 2, 1, pixel.U8)
	require.NoError(t, err)
	_, err = f.Predict(context.Background(), 2, nil, wrongSize)
	require.Error(t, err)
}
