package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/airbusgeo/imagefusion/interval"
	"github.com/airbusgeo/imagefusion/multires"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/airbusgeo/imagefusion/rasterio"
	"github.com/airbusgeo/imagefusion/staarch"
	"github.com/airbusgeo/imagefusion/starfm"
	"github.com/spf13/cobra"
)

// datedFile is a repeatable --low date:path flag value.
type datedFile struct {
	date int64
	path string
}

type datedFileList struct{ items *[]datedFile }

func (d datedFileList) String() string { return "" }
func (d datedFileList) Type() string   { return "date:path" }
func (d datedFileList) Set(s string) error {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return fmt.Errorf("expected date:path, got %q", s)
	}
	date, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return fmt.Errorf("parse date in %q: %w", s, err)
	}
	*d.items = append(*d.items, datedFile{date: date, path: s[i+1:]})
	return nil
}

// rangeFlag parses "lo:hi" into a closed interval.Interval.
type rangeFlag struct {
	iv  *interval.Interval
	set bool
}

func (r *rangeFlag) String() string {
	if !r.set {
		return ""
	}
	return fmt.Sprintf("%v:%v", r.iv.Lo, r.iv.Hi)
}
func (r *rangeFlag) Type() string { return "lo:hi" }
func (r *rangeFlag) Set(s string) error {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return fmt.Errorf("expected lo:hi, got %q", s)
	}
	lo, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return err
	}
	hi, err := strconv.ParseFloat(s[i+1:], 64)
	if err != nil {
		return err
	}
	*r.iv = interval.Closed(lo, hi)
	r.set = true
	return nil
}

var staarchFlags struct {
	highLeft, highRight string
	dateLeft, dateRight int64
	lows                []datedFile
	targetDate          int64
	out                 string
	sensor              string
	neighborShape       string
	numberLandClasses   int
	lowResDIRatio       float64
	numberImagesForAvg  int
	winSize             int
	numberClasses       int
	spectralUnc         float64
	temporalUnc         float64
}

var (
	hiDIRange, ndviRange, brightnessRange, greenessRange, wetnessRange interval.Interval
)

var staarchCmd = &cobra.Command{
	Use:   "staarch",
	Short: "change-detection driver composing STARFM across a disturbance interval",
	RunE:  runSTAARCH,
}

func init() {
	f := staarchCmd.Flags()
	f.StringVar(&staarchFlags.highLeft, "high-left", "", "high-res raster at date-left (required)")
	f.StringVar(&staarchFlags.highRight, "high-right", "", "high-res raster at date-right (required)")
	f.Int64Var(&staarchFlags.dateLeft, "date-left", 0, "interval start date (required)")
	f.Int64Var(&staarchFlags.dateRight, "date-right", 0, "interval end date (required)")
	f.Var(datedFileList{items: &staarchFlags.lows}, "low", "date:path low-res raster, repeatable, spanning [date-left,date-right]")
	f.Int64Var(&staarchFlags.targetDate, "target-date", 0, "date to predict (required)")
	f.StringVar(&staarchFlags.out, "out", "out.tif", "output raster path")
	f.StringVar(&staarchFlags.sensor, "sensor", "landsat", "landsat or modis (selects the tasseled-cap coefficients)")
	f.StringVar(&staarchFlags.neighborShape, "neighbor-shape", "8", "4 or 8 connected disturbance scoring")
	f.IntVar(&staarchFlags.numberLandClasses, "number-land-classes", 4, "k-means cluster count for per-class DI standardization")
	f.Float64Var(&staarchFlags.lowResDIRatio, "low-res-di-ratio", 0.5, "threshold ratio in [0,1] between per-pixel min/max standardized DI")
	f.IntVar(&staarchFlags.numberImagesForAvg, "number-images-for-averaging", 3, "moving-average window over the low-res DI series")
	f.IntVar(&staarchFlags.winSize, "win-size", 31, "STARFM moving-window size (odd)")
	f.IntVar(&staarchFlags.numberClasses, "number-classes", 4, "STARFM same-class tolerance class count")
	f.Float64Var(&staarchFlags.spectralUnc, "spectral-uncertainty", 0.002, "STARFM spectral sensor uncertainty")
	f.Float64Var(&staarchFlags.temporalUnc, "temporal-uncertainty", 0.002, "STARFM temporal sensor uncertainty")
	f.Var(&rangeFlag{iv: &hiDIRange}, "high-res-di-range", "lo:hi standardized high-res DI range")
	f.Var(&rangeFlag{iv: &ndviRange}, "ndvi-range", "lo:hi NDVI range")
	f.Var(&rangeFlag{iv: &brightnessRange}, "brightness-range", "lo:hi tasseled-cap brightness range")
	f.Var(&rangeFlag{iv: &greenessRange}, "greeness-range", "lo:hi tasseled-cap greenness range")
	f.Var(&rangeFlag{iv: &wetnessRange}, "wetness-range", "lo:hi tasseled-cap wetness range")
	for _, name := range []string{"high-left", "high-right", "date-left", "date-right", "target-date"} {
		_ = staarchCmd.MarkFlagRequired(name)
	}
}

func runSTAARCH(cmd *cobra.Command, args []string) error {
	images := multires.New()
	hLeft, geo, err := rasterio.Read(staarchFlags.highLeft, rasterio.ReadOptions{})
	if err != nil {
		return fmt.Errorf("read high-left: %w", err)
	}
	images.Set("high", staarchFlags.dateLeft, hLeft)
	hRight, _, err := rasterio.Read(staarchFlags.highRight, rasterio.ReadOptions{})
	if err != nil {
		return fmt.Errorf("read high-right: %w", err)
	}
	images.Set("high", staarchFlags.dateRight, hRight)
	for _, lf := range staarchFlags.lows {
		img, _, err := rasterio.Read(lf.path, rasterio.ReadOptions{})
		if err != nil {
			return fmt.Errorf("read low %d: %w", lf.date, err)
		}
		images.Set("low", lf.date, img)
	}

	sensor := staarch.Landsat
	if strings.EqualFold(staarchFlags.sensor, "modis") {
		sensor = staarch.MODIS
	}
	shape := staarch.EightConnected
	if staarchFlags.neighborShape == "4" {
		shape = staarch.FourConnected
	}

	opts := staarch.Options{
		HighTag: "high", LowTag: "low",
		DateLeft: staarchFlags.dateLeft, DateRight: staarchFlags.dateRight,
		HighResSensor: sensor, LowResSensor: sensor,
		HighResDIRange:  hiDIRange,
		NDVIRange:       ndviRange,
		BrightnessRange: brightnessRange,
		GreenessRange:   greenessRange,
		WetnessRange:    wetnessRange,
		LowResDIRatio:   staarchFlags.lowResDIRatio,
		NumberImagesForAveraging: staarchFlags.numberImagesForAvg,
		DIMovingAverageWindow:    staarch.AlignCenter,
		NeighborShape:            shape,
		NumberLandClasses:        staarchFlags.numberLandClasses,
		STARFM: starfm.Options{
			WinSize:               staarchFlags.winSize,
			NumberClasses:         staarchFlags.numberClasses,
			SpectralUncertainty:   staarchFlags.spectralUnc,
			TemporalUncertainty:   staarchFlags.temporalUnc,
			UseTempDiffForWeights: starfm.TempDiffOnDoublePair,
			DoCopyOnZeroDiff:      true,
		},
		PredictionArea: pixel.Rect{},
	}
	driver := staarch.New(images, opts)
	if err := driver.ProcessOptions(); err != nil {
		return err
	}
	out, err := driver.Predict(cmd.Context(), staarchFlags.targetDate, nil, nil)
	if err != nil {
		return err
	}
	return rasterio.Write(out, staarchFlags.out, rasterio.WriteOptions{}, geo)
}
