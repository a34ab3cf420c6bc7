package main

import (
	"fmt"

	"github.com/airbusgeo/imagefusion/multires"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/airbusgeo/imagefusion/rasterio"
	"github.com/airbusgeo/imagefusion/starfm"
	"github.com/spf13/cobra"
)

var starfmFlags struct {
	high1, low1   string
	high3, low3   string
	lowTarget     string
	targetDate    int64
	date1, date3  int64
	out           string
	winSize       int
	numberClasses int
	spectralUnc   float64
	temporalUnc   float64
	strict        bool
	logScale      float64
	copyOnZero    bool
}

var starfmCmd = &cobra.Command{
	Use:   "starfm",
	Short: "predict a high-res image at a target date from one or two high/low pairs",
	RunE:  runSTARFM,
}

func init() {
	f := starfmCmd.Flags()
	f.StringVar(&starfmFlags.high1, "high1", "", "pair-1 high-res raster (required)")
	f.StringVar(&starfmFlags.low1, "low1", "", "pair-1 low-res raster (required)")
	f.StringVar(&starfmFlags.high3, "high3", "", "pair-3 high-res raster (enables double-pair mode)")
	f.StringVar(&starfmFlags.low3, "low3", "", "pair-3 low-res raster (enables double-pair mode)")
	f.StringVar(&starfmFlags.lowTarget, "low-target", "", "low-res raster at the target date (required)")
	f.Int64Var(&starfmFlags.date1, "date1", 0, "pair-1 date (required)")
	f.Int64Var(&starfmFlags.date3, "date3", 0, "pair-3 date")
	f.Int64Var(&starfmFlags.targetDate, "target-date", 0, "date to predict (required)")
	f.StringVar(&starfmFlags.out, "out", "out.tif", "output raster path")
	f.IntVar(&starfmFlags.winSize, "win-size", 31, "moving-window size (odd)")
	f.IntVar(&starfmFlags.numberClasses, "number-classes", 4, "number of land-cover classes for same-class tolerance")
	f.Float64Var(&starfmFlags.spectralUnc, "spectral-uncertainty", 0.002, "spectral sensor uncertainty")
	f.Float64Var(&starfmFlags.temporalUnc, "temporal-uncertainty", 0.002, "temporal sensor uncertainty")
	f.BoolVar(&starfmFlags.strict, "strict-filtering", false, "require both dt and ds acceptance instead of either")
	f.Float64Var(&starfmFlags.logScale, "log-scale-factor", 0, ">0 switches to the logarithmic weight form")
	f.BoolVar(&starfmFlags.copyOnZero, "copy-on-zero-diff", true, "shortcut to a direct copy when a pixel's spectral or temporal diff is exactly zero")
	for _, name := range []string{"high1", "low1", "low-target", "date1", "target-date"} {
		_ = starfmCmd.MarkFlagRequired(name)
	}
}

func runSTARFM(cmd *cobra.Command, args []string) error {
	images := multires.New()
	h1, geo, err := rasterio.Read(starfmFlags.high1, rasterio.ReadOptions{})
	if err != nil {
		return fmt.Errorf("read high1: %w", err)
	}
	images.Set("high", starfmFlags.date1, h1)
	l1, _, err := rasterio.Read(starfmFlags.low1, rasterio.ReadOptions{})
	if err != nil {
		return fmt.Errorf("read low1: %w", err)
	}
	images.Set("low", starfmFlags.date1, l1)

	var date3 *int64
	if starfmFlags.high3 != "" {
		h3, _, err := rasterio.Read(starfmFlags.high3, rasterio.ReadOptions{})
		if err != nil {
			return fmt.Errorf("read high3: %w", err)
		}
		images.Set("high", starfmFlags.date3, h3)
		l3, _, err := rasterio.Read(starfmFlags.low3, rasterio.ReadOptions{})
		if err != nil {
			return fmt.Errorf("read low3: %w", err)
		}
		images.Set("low", starfmFlags.date3, l3)
		date3 = &starfmFlags.date3
	}

	lt, _, err := rasterio.Read(starfmFlags.lowTarget, rasterio.ReadOptions{})
	if err != nil {
		return fmt.Errorf("read low-target: %w", err)
	}
	images.Set("low", starfmFlags.targetDate, lt)

	opts := starfm.Options{
		HighTag: "high", LowTag: "low",
		Date1: starfmFlags.date1, Date3: date3,
		WinSize:               starfmFlags.winSize,
		NumberClasses:          starfmFlags.numberClasses,
		SpectralUncertainty:    starfmFlags.spectralUnc,
		TemporalUncertainty:    starfmFlags.temporalUnc,
		UseTempDiffForWeights:  starfm.TempDiffOnDoublePair,
		LogScaleFactor:         starfmFlags.logScale,
		UseStrictFiltering:     starfmFlags.strict,
		DoCopyOnZeroDiff:       starfmFlags.copyOnZero,
		PredictionArea:         pixel.Rect{},
	}
	fz := starfm.New(images, opts)
	if err := fz.ProcessOptions(); err != nil {
		return err
	}
	out, err := fz.Predict(cmd.Context(), starfmFlags.targetDate, nil, nil)
	if err != nil {
		return err
	}
	return rasterio.Write(out, starfmFlags.out, rasterio.WriteOptions{}, geo)
}
