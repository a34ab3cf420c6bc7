// Package fusor defines the contract shared by starfm.Fusor, fitfc.Fusor and
// staarch.Driver: a fusor is bound to a MultiResImage and an options record,
// validates its options once, then predicts a high-resolution image at a target date.
package fusor

import (
	"context"

	"github.com/airbusgeo/imagefusion/pixel"
)

// Fusor is the common surface every algorithm-specific predictor implements. A
// context.Context parameter is threaded through Predict because cancellation
// between row batches is the caller's responsibility to inject, the same way
// godal threads context.Context through its own long-running calls (Warp, VSI
// reads) and STARFM/FitFC/STAARCH predictions over large rasters are exactly such
// calls.
type Fusor interface {
	// ProcessOptions validates the fusor's options record, surfacing every
	// validation failure it can find (via internal/ferr.Join) rather than
	// stopping at the first one. It must be called, and must succeed, before
	// Predict.
	ProcessOptions() error

	// Predict produces the high-resolution image at targetDate. mask restricts
	// which high-res input pixels may be used as window candidates; predictMask
	// restricts which output pixels are computed (outside predictMask, the
	// fusor-specific default/zero value is left in place). Either may be nil to
	// mean "no restriction".
	Predict(ctx context.Context, targetDate int64, mask, predictMask *pixel.Image) (*pixel.Image, error)
}
