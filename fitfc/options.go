package fitfc

import (
	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/pixel"
)

// Options is FitFC's plain, validated-once options record.
type Options struct {
	HighTag, LowTag string
	PairDate        int64

	WinSize          int // odd
	NumberNeighbors  int
	ResolutionFactor int // integer upscaling ratio for the residual; 1 disables it

	PredictionArea pixel.Rect // empty means full image
}

// ProcessOptions validates the option record, surfacing every failure found rather
// than stopping at the first (internal/ferr.Join). NumberNeighbors greater than
// win_size² is not rejected here; Fusor.ProcessOptions clamps it (with a diagnostic).
func (o *Options) ProcessOptions() error {
	var errs []error
	if o.HighTag == "" || o.LowTag == "" {
		errs = append(errs, ferr.NewInvalidArgument("high_tag and low_tag are required"))
	} else if o.HighTag == o.LowTag {
		errs = append(errs, ferr.NewInvalidArgument("high_tag and low_tag must be distinct, got %q", o.HighTag))
	}
	if o.WinSize <= 0 || o.WinSize%2 == 0 {
		errs = append(errs, ferr.NewInvalidArgument("win_size must be a positive odd integer, got %d", o.WinSize))
	}
	if o.NumberNeighbors <= 0 {
		errs = append(errs, ferr.NewInvalidArgument("number_neighbors must be positive, got %d", o.NumberNeighbors))
	}
	if o.ResolutionFactor <= 0 {
		errs = append(errs, ferr.NewInvalidArgument("resolution_factor must be positive, got %d", o.ResolutionFactor))
	}
	if !o.PredictionArea.Empty() && (o.PredictionArea.W < 0 || o.PredictionArea.H < 0) {
		errs = append(errs, ferr.NewInvalidArgument("prediction_area has negative size"))
	}
	return ferr.Join(errs...)
}
