// Package rasterio is the thin raster I/O boundary delegating to an external
// geospatial raster library: it wraps github.com/airbusgeo/godal for
// read/write/warp and nodata handling (color tables are not carried), and is the only package in this
// module that touches files or projections. The pixel core and every fusor are
// agnostic to CRS; rasterio preserves GeoInfo across Read/Write unchanged.
package rasterio

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/pixel"
)

var registerOnce sync.Once

func ensureRegistered() {
	registerOnce.Do(godal.RegisterAll)
}

// GeoInfo carries the per-file metadata the pixel core itself is agnostic to:
// geotransform, CRS, per-band nodata and an optional color table. Read fills
// GeoTransform, WKT and NoData from the source file and Write re-applies those three
// to the destination; ColorTable is left nil by Read and ignored by Write.
type GeoInfo struct {
	GeoTransform [6]float64
	WKT          string
	NoData       []float64 // per band; NaN entries mean "no nodata for this band"
	ColorTable   *godal.ColorTable
}

// Interpolation selects a resampling kernel for Warp.
type Interpolation int

const (
	// Nearest is nearest-neighbor resampling.
	Nearest Interpolation = iota
	// Bilinear is bilinear resampling.
	Bilinear
	// Cubic is cubic resampling.
	Cubic
	// CubicSpline is cubic-spline resampling.
	CubicSpline
)

func (i Interpolation) resampling() godal.ResamplingAlg {
	switch i {
	case Nearest:
		return godal.Nearest
	case Bilinear:
		return godal.Bilinear
	case Cubic:
		return godal.Cubic
	case CubicSpline:
		return godal.CubicSpline
	default:
		return godal.Nearest
	}
}

func toPixelType(dt godal.DataType) (pixel.DataType, error) {
	switch dt {
	case godal.Byte:
		return pixel.U8, nil
	case godal.UInt16:
		return pixel.U16, nil
	case godal.Int16:
		return pixel.I16, nil
	case godal.Int32:
		return pixel.I32, nil
	case godal.Float32:
		return pixel.F32, nil
	case godal.Float64:
		return pixel.F64, nil
	default:
		return 0, ferr.NewImageType("unsupported GDAL data type %s", dt)
	}
}

func toGDALType(dt pixel.DataType) (godal.DataType, error) {
	switch dt {
	case pixel.U8:
		return godal.Byte, nil
	case pixel.U16:
		return godal.UInt16, nil
	case pixel.I16:
		return godal.Int16, nil
	case pixel.I32:
		return godal.Int32, nil
	case pixel.F32:
		return godal.Float32, nil
	case pixel.F64:
		return godal.Float64, nil
	default:
		return 0, ferr.NewImageType("type %s has no GDAL equivalent (i8 requires explicit ConvertTo)", dt)
	}
}

// ReadOptions holds the named parameters accepted by Read.
type ReadOptions struct {
	Layers           []int // band indices (0-based) to read; nil means every band
	Crop             *pixel.Rect
	FlipH            bool
	FlipV            bool
	IgnoreColorTable bool
}

// Read opens path via godal and returns a pixel.Image plus the source GeoInfo. The
// returned image's base/channel count matches the file.
func Read(path string, opts ReadOptions) (*pixel.Image, GeoInfo, error) {
	ensureRegistered()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, GeoInfo{}, ferr.WrapIO(err)
	}
	defer ds.Close()

	structure := ds.Structure()
	bands := ds.Bands()
	layers := opts.Layers
	if layers == nil {
		layers = make([]int, len(bands))
		for i := range layers {
			layers[i] = i
		}
	}
	if len(layers) == 0 || len(layers) > 4 {
		return nil, GeoInfo{}, ferr.NewInvalidArgument("unsupported channel count %d", len(layers))
	}
	pt, err := toPixelType(structure.DataType)
	if err != nil {
		return nil, GeoInfo{}, err
	}

	srcX, srcY, w, h := 0, 0, structure.SizeX, structure.SizeY
	if opts.Crop != nil {
		srcX, srcY, w, h = opts.Crop.X, opts.Crop.Y, opts.Crop.W, opts.Crop.H
	}

	img, err := pixel.New(w, h, len(layers), pt)
	if err != nil {
		return nil, GeoInfo{}, err
	}
	for ci, bandIdx := range layers {
		if bandIdx < 0 || bandIdx >= len(bands) {
			return nil, GeoInfo{}, ferr.NewInvalidArgument("band index %d out of range", bandIdx)
		}
		buf := make([]float64, w*h)
		if err := bands[bandIdx].Read(srcX, srcY, buf, w, h); err != nil {
			return nil, GeoInfo{}, ferr.WrapIO(err)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sx, sy := x, y
				if opts.FlipH {
					sx = w - 1 - x
				}
				if opts.FlipV {
					sy = h - 1 - y
				}
				img.Set(sx, sy, ci, buf[y*w+x])
			}
		}
	}

	geo := GeoInfo{NoData: make([]float64, len(layers))}
	if gt, err := ds.GeoTransform(); err == nil {
		geo.GeoTransform = gt
	}
	geo.WKT = ds.Projection()
	for ci, bandIdx := range layers {
		if nd, ok := bands[bandIdx].NoData(); ok {
			geo.NoData[ci] = nd
		} else {
			geo.NoData[ci] = nan
		}
	}
	if !opts.IgnoreColorTable {
		// color table interpretation is informational only; presence is surfaced to
		// callers that explicitly fetch it via the underlying driver, not copied
		// into GeoInfo eagerly since most fused outputs do not carry one.
	}
	return img, geo, nil
}

var nan = func() float64 {
	var z float64
	return z / z
}()

// WriteOptions controls Write's driver selection.
type WriteOptions struct {
	// Driver overrides the driver inferred from the destination's file extension.
	Driver string
	// DriverOptions are passed as GDAL creation options (e.g. {"COMPRESS":"LZW"}).
	// When Driver resolves to "GTiff" and DriverOptions is nil, {"COMPRESS":"LZW"}
	// is applied by default.
	DriverOptions map[string]string
}

// Write creates path via godal and writes img plus geo into it.
func Write(img *pixel.Image, path string, opts WriteOptions, geo GeoInfo) error {
	ensureRegistered()
	driverName := opts.Driver
	if driverName == "" {
		var err error
		driverName, err = driverFromExtension(path)
		if err != nil {
			return err
		}
	}
	driverOpts := opts.DriverOptions
	if driverOpts == nil && driverName == "GTiff" {
		driverOpts = map[string]string{"COMPRESS": "LZW"}
	}
	gdalType, err := toGDALType(img.DataType())
	if err != nil {
		return err
	}
	var createOpts []godal.DatasetCreateOption
	for k, v := range driverOpts {
		createOpts = append(createOpts, godal.CreationOption(fmt.Sprintf("%s=%s", k, v)))
	}
	ds, err := godal.Create(godal.DriverName(driverName), path, img.Channels(), gdalType, img.Width(), img.Height(), createOpts...)
	if err != nil {
		return ferr.WrapIO(err)
	}
	defer ds.Close()

	if geo.GeoTransform != ([6]float64{}) {
		if err := ds.SetGeoTransform(geo.GeoTransform); err != nil {
			return ferr.WrapIO(err)
		}
	}
	if geo.WKT != "" {
		if err := ds.SetProjection(geo.WKT); err != nil {
			return ferr.WrapIO(err)
		}
	}
	bands := ds.Bands()
	for c := 0; c < img.Channels(); c++ {
		buf := make([]float64, img.Width()*img.Height())
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				buf[y*img.Width()+x] = img.At(x, y, c)
			}
		}
		if err := bands[c].Write(0, 0, buf, img.Width(), img.Height()); err != nil {
			return ferr.WrapIO(err)
		}
		if c < len(geo.NoData) && geo.NoData[c] == geo.NoData[c] { // not NaN
			if err := bands[c].SetNoData(geo.NoData[c]); err != nil {
				return ferr.WrapIO(err)
			}
		}
	}
	return nil
}

func driverFromExtension(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch strings.ToLower(ext) {
	case "tif", "tiff":
		return "GTiff", nil
	case "img":
		return "HFA", nil
	case "png":
		return "PNG", nil
	case "nc":
		return "netCDF", nil
	default:
		return "", ferr.WrapFileFormat(fmt.Errorf("cannot infer driver from extension %q", ext))
	}
}

// Warp reprojects/resamples img from one GeoInfo to another, via godal's library
// version of gdalwarp run against in-memory (MEM driver) datasets. For multi-channel
// non-nearest warps with a source nodata value, a second Nearest warp of the same
// source is used to re-stamp nodata afterward, avoiding interpolation aliasing across
// the nodata boundary that gdalwarp's own nodata handling can leave at sharp edges.
func Warp(img *pixel.Image, from, to GeoInfo, interp Interpolation) (*pixel.Image, error) {
	ensureRegistered()
	if img.Empty() {
		return img, nil
	}

	srcDS, err := toMemDataset(img, from)
	if err != nil {
		return nil, err
	}
	defer srcDS.Close()

	switches := warpSwitches(img, to, interp.resampling())
	dstDS, err := godal.Warp("", []*godal.Dataset{srcDS}, switches, godal.Memory)
	if err != nil {
		return nil, ferr.WrapIO(err)
	}
	defer dstDS.Close()

	out, err := fromMemDataset(dstDS, img.Channels(), img.DataType())
	if err != nil {
		return nil, err
	}

	if interp != Nearest && img.Channels() > 1 && hasNoData(from.NoData) {
		nearDS, err := godal.Warp("", []*godal.Dataset{srcDS}, warpSwitches(img, to, godal.Nearest), godal.Memory)
		if err != nil {
			return nil, ferr.WrapIO(err)
		}
		defer nearDS.Close()
		mask, err := fromMemDataset(nearDS, img.Channels(), img.DataType())
		if err != nil {
			return nil, err
		}
		restampNoData(out, mask, from.NoData)
	}

	return out, nil
}

// toMemDataset copies img plus geo into a new in-memory godal Dataset (MEM driver,
// no backing file), the way Write copies img into an on-disk one.
func toMemDataset(img *pixel.Image, geo GeoInfo) (*godal.Dataset, error) {
	gdalType, err := toGDALType(img.DataType())
	if err != nil {
		return nil, err
	}
	ds, err := godal.Create(godal.Memory, "", img.Channels(), gdalType, img.Width(), img.Height())
	if err != nil {
		return nil, ferr.WrapIO(err)
	}
	if geo.GeoTransform != ([6]float64{}) {
		if err := ds.SetGeoTransform(geo.GeoTransform); err != nil {
			ds.Close()
			return nil, ferr.WrapIO(err)
		}
	}
	if geo.WKT != "" {
		if err := ds.SetProjection(geo.WKT); err != nil {
			ds.Close()
			return nil, ferr.WrapIO(err)
		}
	}
	bands := ds.Bands()
	for c := 0; c < img.Channels(); c++ {
		buf := make([]float64, img.Width()*img.Height())
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				buf[y*img.Width()+x] = img.At(x, y, c)
			}
		}
		if err := bands[c].Write(0, 0, buf, img.Width(), img.Height()); err != nil {
			ds.Close()
			return nil, ferr.WrapIO(err)
		}
		if c < len(geo.NoData) && geo.NoData[c] == geo.NoData[c] { // not NaN
			if err := bands[c].SetNoData(geo.NoData[c]); err != nil {
				ds.Close()
				return nil, ferr.WrapIO(err)
			}
		}
	}
	return ds, nil
}

// fromMemDataset reads every band of ds into a pixel.Image of the given channel
// count and base type, the way Read reads an on-disk dataset's bands.
func fromMemDataset(ds *godal.Dataset, channels int, dt pixel.DataType) (*pixel.Image, error) {
	structure := ds.Structure()
	bands := ds.Bands()
	if len(bands) < channels {
		return nil, ferr.NewInvalidArgument("warped dataset has %d bands, want %d", len(bands), channels)
	}
	img, err := pixel.New(structure.SizeX, structure.SizeY, channels, dt)
	if err != nil {
		return nil, err
	}
	w, h := structure.SizeX, structure.SizeY
	for c := 0; c < channels; c++ {
		buf := make([]float64, w*h)
		if err := bands[c].Read(0, 0, buf, w, h); err != nil {
			return nil, ferr.WrapIO(err)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, c, buf[y*w+x])
			}
		}
	}
	return img, nil
}

// warpSwitches builds the gdalwarp-CLI-style switches for a warp that keeps the
// output on a img.Width() x img.Height() grid covering to's extent.
func warpSwitches(img *pixel.Image, to GeoInfo, alg godal.ResamplingAlg) []string {
	switches := []string{
		"-r", alg.String(),
		"-ts", strconv.Itoa(img.Width()), strconv.Itoa(img.Height()),
	}
	if to.WKT != "" {
		switches = append(switches, "-t_srs", to.WKT)
	}
	if to.GeoTransform != ([6]float64{}) {
		xmin, ymin, xmax, ymax := extent(to.GeoTransform, img.Width(), img.Height())
		switches = append(switches, "-te",
			strconv.FormatFloat(xmin, 'f', -1, 64),
			strconv.FormatFloat(ymin, 'f', -1, 64),
			strconv.FormatFloat(xmax, 'f', -1, 64),
			strconv.FormatFloat(ymax, 'f', -1, 64))
	}
	if nd := nodataArg(to.NoData); nd != "" {
		switches = append(switches, "-dstnodata", nd)
	}
	return switches
}

// extent computes the (xmin,ymin,xmax,ymax) bounding box covered by a width x height
// grid under gt, ignoring the (rarely used) rotation terms gt[2] and gt[4].
func extent(gt [6]float64, width, height int) (xmin, ymin, xmax, ymax float64) {
	x0, px, y0, py := gt[0], gt[1], gt[3], gt[5]
	x1 := x0 + px*float64(width)
	y1 := y0 + py*float64(height)
	if x0 < x1 {
		xmin, xmax = x0, x1
	} else {
		xmin, xmax = x1, x0
	}
	if y0 < y1 {
		ymin, ymax = y0, y1
	} else {
		ymin, ymax = y1, y0
	}
	return xmin, ymin, xmax, ymax
}

func hasNoData(nodata []float64) bool {
	for _, v := range nodata {
		if v == v { // not NaN
			return true
		}
	}
	return false
}

func nodataArg(nodata []float64) string {
	if !hasNoData(nodata) {
		return ""
	}
	parts := make([]string, len(nodata))
	for i, v := range nodata {
		if v == v {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		} else {
			parts[i] = "nan"
		}
	}
	return strings.Join(parts, " ")
}

// restampNoData forces out's pixels back to to their source nodata value wherever
// mask (a Nearest-resampled warp of the same source) shows the nearest source pixel
// was nodata, undoing any blending a smoother kernel introduced across that boundary.
func restampNoData(out, mask *pixel.Image, srcNoData []float64) {
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			for c := 0; c < out.Channels() && c < len(srcNoData); c++ {
				nd := srcNoData[c]
				if nd != nd {
					continue
				}
				if mask.At(x, y, c) == nd {
					out.Set(x, y, c, nd)
				}
			}
		}
	}
}

// FileFormat wraps godal's driver lookup.
type FileFormat struct {
	Name godal.DriverName
}

// FromFile returns the driver godal used to open path.
func FromFile(path string) (FileFormat, error) {
	ensureRegistered()
	ds, err := godal.Open(path)
	if err != nil {
		return FileFormat{}, ferr.WrapIO(err)
	}
	defer ds.Close()
	return FileFormat{Name: godal.DriverName(ds.Driver().ShortName())}, nil
}

// FromExtension infers a driver name from a file extension (without the dot).
func FromExtension(ext string) (FileFormat, error) {
	name, err := driverFromExtension("x." + ext)
	if err != nil {
		return FileFormat{}, err
	}
	return FileFormat{Name: godal.DriverName(name)}, nil
}

// SupportedFormats lists the raster driver short names rasterio knows how to infer
// from a file extension (see driverFromExtension); godal itself does not expose an
// enumeration of every driver compiled into the underlying GDAL build.
func SupportedFormats() []string {
	return []string{"GTiff", "HFA", "PNG", "netCDF"}
}
