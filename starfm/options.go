package starfm

import (
	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/pixel"
)

// TempDiffWeighting controls whether the temporal difference dt contributes to a
// candidate's weight (it always contributes to acceptance filtering regardless).
type TempDiffWeighting int

const (
	// TempDiffDisable always zeroes dt in the weight formula.
	TempDiffDisable TempDiffWeighting = iota
	// TempDiffEnable always uses the real dt in the weight formula.
	TempDiffEnable
	// TempDiffOnDoublePair zeroes dt in the weight formula unless both pair dates
	// are present (double-pair mode).
	TempDiffOnDoublePair
)

// Options is STARFM's plain, validated-once options record.
type Options struct {
	HighTag, LowTag string
	Date1           int64
	Date3           *int64 // nil means single-pair mode

	WinSize       int // odd
	NumberClasses int

	SpectralUncertainty float64
	TemporalUncertainty float64

	UseTempDiffForWeights TempDiffWeighting
	LogScaleFactor        float64 // >0 switches to the logarithmic weight form
	UseStrictFiltering    bool
	DoCopyOnZeroDiff      bool

	PredictionArea pixel.Rect // empty means full image
}

func (o Options) doublePair() bool { return o.Date3 != nil }

// ProcessOptions validates the option record, surfacing every failure found rather
// than stopping at the first (internal/ferr.Join).
func (o Options) ProcessOptions() error {
	var errs []error
	if o.HighTag == "" || o.LowTag == "" {
		errs = append(errs, ferr.NewInvalidArgument("high_tag and low_tag are required"))
	} else if o.HighTag == o.LowTag {
		errs = append(errs, ferr.NewInvalidArgument("high_tag and low_tag must be distinct, got %q", o.HighTag))
	}
	if o.WinSize <= 0 || o.WinSize%2 == 0 {
		errs = append(errs, ferr.NewInvalidArgument("win_size must be a positive odd integer, got %d", o.WinSize))
	}
	if o.NumberClasses <= 0 {
		errs = append(errs, ferr.NewInvalidArgument("number_classes must be positive, got %d", o.NumberClasses))
	}
	if o.SpectralUncertainty < 0 || o.TemporalUncertainty < 0 {
		errs = append(errs, ferr.NewInvalidArgument("uncertainties must be non-negative"))
	}
	if !o.PredictionArea.Empty() && (o.PredictionArea.W < 0 || o.PredictionArea.H < 0) {
		errs = append(errs, ferr.NewInvalidArgument("prediction_area has negative size"))
	}
	return ferr.Join(errs...)
}
