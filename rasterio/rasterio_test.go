package rasterio

import (
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/stretchr/testify/require"
)

func TestDriverFromExtension(t *testing.T) {
	cases := map[string]string{
		"out.tif":  "GTiff",
		"out.tiff": "GTiff",
		"out.img":  "HFA",
		"out.png":  "PNG",
		"out.nc":   "netCDF",
	}
	for path, want := range cases {
		got, err := driverFromExtension(path)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := driverFromExtension("out.bogus")
	require.Error(t, err)
}

func TestExtentNorthUp(t *testing.T) {
	gt := [6]float64{10, 2, 0, 100, 0, -2}
	xmin, ymin, xmax, ymax := extent(gt, 5, 5)
	require.Equal(t, 10.0, xmin)
	require.Equal(t, 20.0, xmax)
	require.Equal(t, 90.0, ymin)
	require.Equal(t, 100.0, ymax)
}

func TestExtentHandlesNegativePixelWidth(t *testing.T) {
	// a mirrored grid (pixel width negative) still yields xmin < xmax.
	gt := [6]float64{20, -2, 0, 100, 0, -2}
	xmin, ymin, xmax, ymax := extent(gt, 5, 5)
	require.Equal(t, 10.0, xmin)
	require.Equal(t, 20.0, xmax)
	require.Equal(t, 90.0, ymin)
	require.Equal(t, 100.0, ymax)
}

func TestHasNoData(t *testing.T) {
	require.False(t, hasNoData([]float64{nan, nan}))
	require.True(t, hasNoData([]float64{nan, 0}))
	require.False(t, hasNoData(nil))
}

func TestNoDataArg(t *testing.T) {
	require.Equal(t, "", nodataArg([]float64{nan, nan}))
	require.Equal(t, "0 nan", nodataArg([]float64{0, nan}))
}

func TestWarpSwitchesIncludesResamplingAndExtent(t *testing.T) {
	img, err := pixel.New(4, 4, 1, pixel.U8)
	require.NoError(t, err)
	to := GeoInfo{
		GeoTransform: [6]float64{0, 1, 0, 4, 0, -1},
		WKT:          "EPSG:4326",
		NoData:       []float64{0},
	}
	switches := warpSwitches(img, to, godal.Bilinear)
	require.Contains(t, switches, "-r")
	require.Contains(t, switches, "bilinear")
	require.Contains(t, switches, "-t_srs")
	require.Contains(t, switches, "EPSG:4326")
	require.Contains(t, switches, "-te")
	require.Contains(t, switches, "-dstnodata")
}

func TestWarpSwitchesOmitsUnsetFields(t *testing.T) {
	img, err := pixel.New(4, 4, 1, pixel.U8)
	require.NoError(t, err)
	switches := warpSwitches(img, GeoInfo{}, godal.Nearest)
	require.NotContains(t, switches, "-t_srs")
	require.NotContains(t, switches, "-te")
	require.NotContains(t, switches, "-dstnodata")
}

func TestRestampNoDataRestoresBoundary(t *testing.T) {
	out, err := pixel.New(2, 1, 1, pixel.U8)
	require.NoError(t, err)
	out.Set(0, 0, 0, 50) // a smoothing kernel bled a neighbor value in here
	out.Set(1, 0, 0, 10)

	mask, err := pixel.New(2, 1, 1, pixel.U8)
	require.NoError(t, err)
	mask.Set(0, 0, 0, 0) // nearest-resampled source pixel was nodata
	mask.Set(1, 0, 0, 10)

	restampNoData(out, mask, []float64{0})
	require.Equal(t, 0.0, out.At(0, 0, 0))
	require.Equal(t, 10.0, out.At(1, 0, 0))
}

func TestWarpEmptyImageIsNoop(t *testing.T) {
	img, err := pixel.New(0, 0, 1, pixel.U8)
	require.NoError(t, err)
	out, err := Warp(img, GeoInfo{}, GeoInfo{}, Nearest)
	require.NoError(t, err)
	require.True(t, out.Empty())
}
