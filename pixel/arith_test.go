package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, w, h, channels int, dt DataType, v float64) *Image {
	t.Helper()
	img, err := New(w, h, channels, dt)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				img.Set(x, y, c, v)
			}
		}
	}
	return img
}

func TestAddSubtractSaturate(t *testing.T) {
	a := fill(t, 1, 1, 1, U8, 250)
	b := fill(t, 1, 1, 1, U8, 10)
	sum, err := Add(a, b)
	require.NoError(t, err)
	require.Equal(t, 255.0, sum.At(0, 0, 0))

	diff, err := Subtract(b, a)
	require.NoError(t, err)
	require.Equal(t, 0.0, diff.At(0, 0, 0))
}

func TestDivideByZeroIsZero(t *testing.T) {
	a := fill(t, 1, 1, 1, F32, 10)
	b := fill(t, 1, 1, 1, F32, 0)
	out, err := Divide(a, b)
	require.NoError(t, err)
	require.Equal(t, 0.0, out.At(0, 0, 0))
}

func TestDivideScalarRejectsZero(t *testing.T) {
	a := fill(t, 1, 1, 1, F32, 10)
	_, err := DivideScalar(a, One(0.0))
	require.Error(t, err)
}

func TestBroadcastSingleChannelOverMultiChannel(t *testing.T) {
	a := fill(t, 1, 1, 3, U8, 10)
	b := fill(t, 1, 1, 1, U8, 5)
	out, err := Add(a, b)
	require.NoError(t, err)
	require.Equal(t, 3, out.Channels())
	for c := 0; c < 3; c++ {
		require.Equal(t, 15.0, out.At(0, 0, c))
	}
}

func TestIncompatibleChannelCountsFail(t *testing.T) {
	a := fill(t, 1, 1, 2, U8, 10)
	b := fill(t, 1, 1, 3, U8, 5)
	_, err := Add(a, b)
	require.Error(t, err)
}

func TestMaskGatesOutputKeepingOriginalValue(t *testing.T) {
	a := fill(t, 2, 1, 1, U8, 10)
	b := fill(t, 2, 1, 1, U8, 5)
	mask, err := New(2, 1, 1, U8)
	require.NoError(t, err)
	mask.Set(0, 0, 0, 1)
	mask.Set(1, 0, 0, 0)

	out, err := Add(a, b, mask)
	require.NoError(t, err)
	require.Equal(t, 15.0, out.At(0, 0, 0))
	require.Equal(t, 10.0, out.At(1, 0, 0), "masked-out pixel should keep a's original value")
}

func TestMinimumMaximum(t *testing.T) {
	a := fill(t, 1, 1, 1, F32, 3)
	b := fill(t, 1, 1, 1, F32, 7)
	min, err := Minimum(a, b)
	require.NoError(t, err)
	require.Equal(t, 3.0, min.At(0, 0, 0))
	max, err := Maximum(a, b)
	require.NoError(t, err)
	require.Equal(t, 7.0, max.At(0, 0, 0))
}

func TestAbsDiffAndAbs(t *testing.T) {
	a := fill(t, 1, 1, 1, F32, 3)
	b := fill(t, 1, 1, 1, F32, 7)
	d, err := AbsDiff(a, b)
	require.NoError(t, err)
	require.Equal(t, 4.0, d.At(0, 0, 0))

	neg := fill(t, 1, 1, 1, F32, -4)
	require.Equal(t, 4.0, Abs(neg).At(0, 0, 0))
}
