package pixel

import (
	"math"

	"github.com/airbusgeo/imagefusion/internal/diag"
	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/interval"
)

// adjustIntervalForType discretizes an open interval bound for integer base types
// (ceil the lower bound, floor the upper bound, bumping by one when the rounded
// value still sits exactly on the original open bound) and coerces open bounds to
// closed for float types, emitting a diagnostic since that changes which values at
// the boundary are included.
func adjustIntervalForType(iv interval.Interval, dt DataType) interval.Interval {
	if dt.IsInteger() {
		lo, hi := iv.Lo, iv.Hi
		if iv.LoOpen {
			lo = math.Ceil(iv.Lo)
			if lo == iv.Lo {
				lo++
			}
		}
		if iv.HiOpen {
			hi = math.Floor(iv.Hi)
			if hi == iv.Hi {
				hi--
			}
		}
		return interval.Closed(lo, hi)
	}
	if iv.LoOpen || iv.HiOpen {
		diag.Warnf("open interval bound on float type coerced to closed", "lo", iv.Lo, "hi", iv.Hi)
	}
	return interval.Closed(iv.Lo, iv.Hi)
}

func adjustSetForType(s interval.Set, dt DataType) interval.Set {
	var out interval.Set
	for i, iv := range s.Intervals() {
		adj := adjustIntervalForType(iv, dt)
		if i == 0 {
			out = interval.NewSet(adj)
		} else {
			out = out.Union(adj)
		}
	}
	return out
}

// CreateSingleChannelMaskFromRange builds a 1-channel u8 mask from one interval.Set
// per channel of img. When andAccumulate is true a pixel is valid only
// if every channel's value falls in its range; when false, a pixel is valid if any
// channel's value falls in its range.
func (img *Image) CreateSingleChannelMaskFromRange(ranges []interval.Set, andAccumulate bool) (*Image, error) {
	if len(ranges) != img.channels {
		return nil, ferr.NewInvalidArgument("range count %d does not match channel count %d", len(ranges), img.channels)
	}
	adjusted := make([]interval.Set, img.channels)
	for c, r := range ranges {
		adjusted[c] = adjustSetForType(r, img.dtype)
	}
	out, _ := New(img.width, img.height, 1, U8)
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			valid := andAccumulate
			for c := 0; c < img.channels; c++ {
				in := adjusted[c].Contains(img.At(x, y, c))
				if andAccumulate {
					valid = valid && in
				} else {
					valid = valid || in
				}
			}
			if valid {
				out.Set(x, y, 0, 1)
			}
		}
	}
	return out, nil
}

// CreateMultiChannelMaskFromRange builds an N-channel u8 mask from img, one channel
// of the mask per channel of img, each gated independently by its own interval.Set.
func (img *Image) CreateMultiChannelMaskFromRange(ranges []interval.Set) (*Image, error) {
	if len(ranges) != img.channels {
		return nil, ferr.NewInvalidArgument("range count %d does not match channel count %d", len(ranges), img.channels)
	}
	adjusted := make([]interval.Set, img.channels)
	for c, r := range ranges {
		adjusted[c] = adjustSetForType(r, img.dtype)
	}
	out, _ := New(img.width, img.height, img.channels, U8)
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if adjusted[c].Contains(img.At(x, y, c)) {
					out.Set(x, y, c, 1)
				}
			}
		}
	}
	return out, nil
}
