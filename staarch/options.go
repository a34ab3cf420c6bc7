// Package staarch implements the change-detection driver that composes starfm.Fusor
// to predict across a disturbance interval: it derives a per-pixel date-of-disturbance
// map from a high-res pair plus a low-res time series, then picks the "cleaner" side
// of the disturbance for every output pixel.
package staarch

import (
	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/interval"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/airbusgeo/imagefusion/starfm"
)

// Sensor selects the tasseled-cap coefficient matrix and default NDVI band indices.
type Sensor int

const (
	// Landsat selects the 6-band (TM bands 1,2,3,4,5,7) tasseled-cap transform.
	Landsat Sensor = iota
	// MODIS selects the 7-band tasseled-cap transform.
	MODIS
)

func (s Sensor) mapping() pixel.ColorMapping {
	if s == MODIS {
		return pixel.MODISTasseledCap
	}
	return pixel.LandsatTasseledCap
}

// defaultNDVIIndices returns the (red, nir) source-channel indices used to compute
// NDVI from the sensor's native band order, when Options doesn't override them.
func (s Sensor) defaultNDVIIndices() (red, nir int) {
	if s == MODIS {
		return 0, 1 // MODIS bands 1 (red), 2 (NIR)
	}
	return 2, 3 // Landsat TM bands 3 (red), 4 (NIR)
}

// NeighborShape selects 4- or 8-connectivity for the change-mask neighbor test.
type NeighborShape int

const (
	// FourConnected tests the N/S/E/W neighbors.
	FourConnected NeighborShape = iota
	// EightConnected additionally tests the four diagonal neighbors.
	EightConnected
)

func (n NeighborShape) offsets() [][2]int {
	base := [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	if n == EightConnected {
		base = append(base, [2]int{-1, -1}, [2]int{-1, 1}, [2]int{1, -1}, [2]int{1, 1})
	}
	return base
}

// MovingAverageAlign selects which end of the averaging window aligns to the date
// being smoothed.
type MovingAverageAlign int

const (
	// AlignLeft windows [t-n+1, t].
	AlignLeft MovingAverageAlign = iota
	// AlignCenter windows roughly centered on t.
	AlignCenter
	// AlignRight windows [t, t+n-1].
	AlignRight
)

// Options is STAARCH's plain, validated-once options record.
type Options struct {
	HighTag, LowTag         string
	HighMaskTag, LowMaskTag string // "" means no mask

	DateLeft, DateRight int64

	HighResSensor, LowResSensor Sensor
	// HighSourceChannels/LowSourceChannels override the tasseled-cap band order;
	// nil uses the sensor's natural 0..n-1 order.
	HighSourceChannels, LowSourceChannels []int
	// HighRedIndex/HighNIRIndex override the NDVI source-channel indices within the
	// high-res image; zero value triggers the sensor default.
	HighRedIndex, HighNIRIndex *int

	HighResDIRange  interval.Interval
	NDVIRange       interval.Interval
	BrightnessRange interval.Interval
	GreenessRange   interval.Interval
	WetnessRange    interval.Interval

	LowResDIRatio float64 // t in [0,1]

	NumberImagesForAveraging int
	DIMovingAverageWindow    MovingAverageAlign

	NeighborShape NeighborShape

	NumberLandClasses int
	ClusterImage      *pixel.Image // optional explicit per-pixel cluster id (i32); nil triggers k-means

	STARFM starfm.Options // sub-options; HighTag/LowTag/Date1/Date3 are overwritten per invocation

	PredictionArea pixel.Rect
}

func (o Options) highRedNIR() (red, nir int) {
	red, nir = o.HighResSensor.defaultNDVIIndices()
	if o.HighRedIndex != nil {
		red = *o.HighRedIndex
	}
	if o.HighNIRIndex != nil {
		nir = *o.HighNIRIndex
	}
	return red, nir
}

// ProcessOptions validates the option record, surfacing every failure found rather
// than stopping at the first.
func (o Options) ProcessOptions() error {
	var errs []error
	if o.HighTag == "" || o.LowTag == "" {
		errs = append(errs, ferr.NewInvalidArgument("high_tag and low_tag are required"))
	} else if o.HighTag == o.LowTag {
		errs = append(errs, ferr.NewInvalidArgument("high_tag and low_tag must be distinct"))
	}
	if o.DateRight <= o.DateLeft {
		errs = append(errs, ferr.NewInvalidArgument("date_right must be after date_left"))
	}
	if o.LowResDIRatio < 0 || o.LowResDIRatio > 1 {
		errs = append(errs, ferr.NewInvalidArgument("low_res_di_ratio must be in [0,1], got %v", o.LowResDIRatio))
	}
	if o.NumberImagesForAveraging <= 0 {
		errs = append(errs, ferr.NewInvalidArgument("number_images_for_averaging must be positive"))
	}
	if o.ClusterImage == nil && o.NumberLandClasses <= 0 {
		errs = append(errs, ferr.NewInvalidArgument("number_land_classes must be positive when cluster_image is not supplied"))
	}
	if !o.PredictionArea.Empty() && (o.PredictionArea.W < 0 || o.PredictionArea.H < 0) {
		errs = append(errs, ferr.NewInvalidArgument("prediction_area has negative size"))
	}
	return ferr.Join(errs...)
}
