package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectDilateIntersect(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	d := r.Dilate(2)
	require.Equal(t, Rect{X: 8, Y: 8, W: 9, H: 9}, d)

	full := Rect{X: 0, Y: 0, W: 12, H: 12}
	got := d.Intersect(full)
	require.Equal(t, Rect{X: 8, Y: 8, W: 4, H: 4}, got)

	disjoint := Rect{X: 100, Y: 100, W: 5, H: 5}.Intersect(full)
	require.True(t, disjoint.Empty())
}

func TestConvertToSaturates(t *testing.T) {
	img, err := New(1, 1, 1, I16)
	require.NoError(t, err)
	img.Set(0, 0, 0, 300)
	out := img.ConvertTo(U8)
	require.Equal(t, 255.0, out.At(0, 0, 0))
}

func TestCropIsZeroCopy(t *testing.T) {
	img, err := New(4, 4, 1, U8)
	require.NoError(t, err)
	img.Set(1, 1, 0, 42)
	crop, err := img.Crop(Rect{X: 1, Y: 1, W: 2, H: 2})
	require.NoError(t, err)
	require.Equal(t, 42.0, crop.At(0, 0, 0), "cropped view should see parent's value")

	crop.Set(0, 0, 0, 7)
	require.Equal(t, 7.0, img.At(1, 1, 0), "crop write should be visible through parent")
}

func TestCloneRectIsOwning(t *testing.T) {
	img, err := New(4, 4, 1, U8)
	require.NoError(t, err)
	img.Set(1, 1, 0, 42)
	clone, err := img.CloneRect(Rect{X: 1, Y: 1, W: 2, H: 2})
	require.NoError(t, err)

	clone.Set(0, 0, 0, 7)
	require.Equal(t, 42.0, img.At(1, 1, 0), "clone write should not leak into parent")
}
