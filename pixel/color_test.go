package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pixel3(t *testing.T, c0, c1, c2 float64) *Image {
	t.Helper()
	img, err := New(1, 1, 3, F32)
	require.NoError(t, err)
	img.Set(0, 0, 0, c0)
	img.Set(0, 0, 1, c1)
	img.Set(0, 0, 2, c2)
	return img
}

func TestRGBToYCbCrRoundTrip(t *testing.T) {
	img := pixel3(t, 0.6, 0.3, 0.1)
	ycbcr, err := img.ConvertColor(RGBToYCbCr, F64)
	require.NoError(t, err)
	back, err := ycbcr.ConvertColor(YCbCrToRGB, F64)
	require.NoError(t, err)
	require.InDelta(t, 0.6, back.At(0, 0, 0), 1e-6)
	require.InDelta(t, 0.3, back.At(0, 0, 1), 1e-6)
	require.InDelta(t, 0.1, back.At(0, 0, 2), 1e-6)
}

func TestRGBToXYZRoundTrip(t *testing.T) {
	img := pixel3(t, 0.5, 0.4, 0.2)
	xyz, err := img.ConvertColor(RGBToXYZ, F64)
	require.NoError(t, err)
	back, err := xyz.ConvertColor(XYZToRGB, F64)
	require.NoError(t, err)
	require.InDelta(t, 0.5, back.At(0, 0, 0), 1e-6)
	require.InDelta(t, 0.4, back.At(0, 0, 1), 1e-6)
	require.InDelta(t, 0.2, back.At(0, 0, 2), 1e-6)
}

func TestRGBToLabRoundTrip(t *testing.T) {
	img := pixel3(t, 0.5, 0.4, 0.2)
	lab, err := img.ConvertColor(RGBToLab, F64)
	require.NoError(t, err)
	back, err := lab.ConvertColor(LabToRGB, F64)
	require.NoError(t, err)
	require.InDelta(t, 0.5, back.At(0, 0, 0), 1e-5)
	require.InDelta(t, 0.4, back.At(0, 0, 1), 1e-5)
	require.InDelta(t, 0.2, back.At(0, 0, 2), 1e-5)
}

func TestRGBToLuvRoundTrip(t *testing.T) {
	img := pixel3(t, 0.5, 0.4, 0.2)
	luv, err := img.ConvertColor(RGBToLuv, F64)
	require.NoError(t, err)
	back, err := luv.ConvertColor(LuvToRGB, F64)
	require.NoError(t, err)
	require.InDelta(t, 0.5, back.At(0, 0, 0), 1e-5)
	require.InDelta(t, 0.4, back.At(0, 0, 1), 1e-5)
	require.InDelta(t, 0.2, back.At(0, 0, 2), 1e-5)
}

func TestRGBToHSVRoundTrip(t *testing.T) {
	img := pixel3(t, 0.5, 0.4, 0.2)
	hsv, err := img.ConvertColor(RGBToHSV, F64)
	require.NoError(t, err)
	back, err := hsv.ConvertColor(HSVToRGB, F64)
	require.NoError(t, err)
	require.InDelta(t, 0.5, back.At(0, 0, 0), 1e-6)
	require.InDelta(t, 0.4, back.At(0, 0, 1), 1e-6)
	require.InDelta(t, 0.2, back.At(0, 0, 2), 1e-6)
}

func TestRGBToHLSRoundTrip(t *testing.T) {
	img := pixel3(t, 0.5, 0.4, 0.2)
	hls, err := img.ConvertColor(RGBToHLS, F64)
	require.NoError(t, err)
	back, err := hls.ConvertColor(HLSToRGB, F64)
	require.NoError(t, err)
	require.InDelta(t, 0.5, back.At(0, 0, 0), 1e-6)
	require.InDelta(t, 0.4, back.At(0, 0, 1), 1e-6)
	require.InDelta(t, 0.2, back.At(0, 0, 2), 1e-6)
}

func TestNDIPositiveWhenFirstChannelDominates(t *testing.T) {
	img, err := New(1, 1, 2, F32)
	require.NoError(t, err)
	img.Set(0, 0, 0, 0.8) // pos
	img.Set(0, 0, 1, 0.2) // neg
	out, err := img.ConvertColor(NDI, F32)
	require.NoError(t, err)
	require.InDelta(t, 0.6, out.At(0, 0, 0), 1e-6)
}

func TestNDIRescaledToUnsignedRange(t *testing.T) {
	img, err := New(1, 1, 2, F32)
	require.NoError(t, err)
	img.Set(0, 0, 0, 0.8)
	img.Set(0, 0, 1, 0.2)
	out, err := img.ConvertColor(NDI, U8)
	require.NoError(t, err)
	// signed value 0.6 rescaled to (0.6+1)/2 = 0.8, then saturated into U8 (rounds to 1).
	require.GreaterOrEqual(t, out.At(0, 0, 0), 0.0)
}

func TestConvertColorRejectsWrongChannelCount(t *testing.T) {
	img, err := New(1, 1, 2, F32)
	require.NoError(t, err)
	_, err = img.ConvertColor(RGBToYCbCr, F64)
	require.Error(t, err)
}

func TestConvertColorHonorsExplicitSourceChannels(t *testing.T) {
	img, err := New(1, 1, 4, F32)
	require.NoError(t, err)
	img.Set(0, 0, 0, 0.8) // nir
	img.Set(0, 0, 3, 0.2) // red
	out, err := img.ConvertColor(NDI, F32, 0, 3)
	require.NoError(t, err)
	require.InDelta(t, 0.6, out.At(0, 0, 0), 1e-6)
}

func TestLandsatTasseledCapProducesThreeBands(t *testing.T) {
	img, err := New(1, 1, 6, F32)
	require.NoError(t, err)
	for c := 0; c < 6; c++ {
		img.Set(0, 0, c, 0.2)
	}
	out, err := img.ConvertColor(LandsatTasseledCap, F32)
	require.NoError(t, err)
	require.Equal(t, 3, out.Channels())
}

func TestMODISTasseledCapProducesThreeBands(t *testing.T) {
	img, err := New(1, 1, 7, F32)
	require.NoError(t, err)
	for c := 0; c < 7; c++ {
		img.Set(0, 0, c, 0.2)
	}
	out, err := img.ConvertColor(MODISTasseledCap, F32)
	require.NoError(t, err)
	require.Equal(t, 3, out.Channels())
}
