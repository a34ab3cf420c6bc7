package pixel

import (
	"math"

	"github.com/airbusgeo/imagefusion/internal/ferr"
)

// broadcastChannels resolves the channel index to read from a single-channel operand
// broadcasting over an N-channel one: a 1-channel image contributes channel 0 to
// every channel of the other operand.
func broadcastChannels(aChannels, bChannels int) (outChannels int, err error) {
	switch {
	case aChannels == bChannels:
		return aChannels, nil
	case aChannels == 1:
		return bChannels, nil
	case bChannels == 1:
		return aChannels, nil
	default:
		return 0, ferr.NewSize("channel counts %d and %d are not broadcast-compatible", aChannels, bChannels)
	}
}

func maskAllows(mask *Image, x, y, c int) bool {
	if mask == nil {
		return true
	}
	if mask.channels == 1 {
		return mask.At(x, y, 0) != 0
	}
	return mask.At(x, y, c) != 0
}

// binaryImageOp applies f element-wise over a and b, broadcasting a single-channel
// operand, gated by an optional mask (nil mask means every pixel is processed).
// Pixels outside the mask keep a's original value when a has the output's channel
// count; when a is the broadcast single-channel operand they are left at zero. The
// result's base type is a's.
func binaryImageOp(a, b *Image, mask *Image, f func(av, bv float64) float64) (*Image, error) {
	if a.width != b.width || a.height != b.height {
		return nil, ferr.NewSize("image size mismatch %dx%d vs %dx%d", a.width, a.height, b.width, b.height)
	}
	outChannels, err := broadcastChannels(a.channels, b.channels)
	if err != nil {
		return nil, err
	}
	if mask != nil {
		if mask.width != a.width || mask.height != a.height {
			return nil, ferr.NewSize("mask size mismatch")
		}
		if mask.dtype != U8 {
			return nil, ferr.NewImageType("mask must be base u8, got %s", mask.dtype)
		}
		if mask.channels != 1 && mask.channels != outChannels {
			return nil, ferr.NewImageType("mask channel count %d incompatible with %d", mask.channels, outChannels)
		}
	}
	out, _ := New(a.width, a.height, outChannels, a.dtype)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			for c := 0; c < outChannels; c++ {
				ac := c
				if a.channels == 1 {
					ac = 0
				}
				if !maskAllows(mask, x, y, c) {
					if a.channels == outChannels {
						out.Set(x, y, c, a.At(x, y, ac))
					}
					continue
				}
				bc := c
				if b.channels == 1 {
					bc = 0
				}
				out.Set(x, y, c, f(a.At(x, y, ac), b.At(x, y, bc)))
			}
		}
	}
	return out, nil
}

// scalarImageOp applies f(a[x,y,c], scalar.At(c)) element-wise, gated by an optional
// mask, implementing the (image, scalar-per-channel[, mask]) overloads.
func scalarImageOp(a *Image, scalar OneOrPerChannel[float64], mask *Image, f func(av, sv float64) float64) (*Image, error) {
	if err := scalar.checkChannels(a.channels); err != nil {
		return nil, err
	}
	if mask != nil {
		if mask.width != a.width || mask.height != a.height {
			return nil, ferr.NewSize("mask size mismatch")
		}
		if mask.dtype != U8 {
			return nil, ferr.NewImageType("mask must be base u8, got %s", mask.dtype)
		}
		if mask.channels != 1 && mask.channels != a.channels {
			return nil, ferr.NewImageType("mask channel count %d incompatible with %d", mask.channels, a.channels)
		}
	}
	out, _ := New(a.width, a.height, a.channels, a.dtype)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			for c := 0; c < a.channels; c++ {
				if !maskAllows(mask, x, y, c) {
					out.Set(x, y, c, a.At(x, y, c))
					continue
				}
				out.Set(x, y, c, f(a.At(x, y, c), scalar.At(c)))
			}
		}
	}
	return out, nil
}

// Add returns a+b, element-wise, saturating to a's base type.
func Add(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), func(x, y float64) float64 { return x + y })
}

// Subtract returns a-b, element-wise, saturating to a's base type.
func Subtract(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), func(x, y float64) float64 { return x - y })
}

// Multiply returns a*b, element-wise, saturating to a's base type.
func Multiply(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), func(x, y float64) float64 { return x * y })
}

// Divide returns a/b, element-wise, saturating to a's base type.
func Divide(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x / y
	})
}

// AbsDiff returns |a-b|, element-wise.
func AbsDiff(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), func(x, y float64) float64 { return math.Abs(x - y) })
}

// Minimum returns the element-wise minimum of a and b. Argument order (a first, then
// b) is preserved so that ties resolve identically regardless of an optional mask.
func Minimum(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), math.Min)
}

// Maximum returns the element-wise maximum of a and b.
func Maximum(a, b *Image, mask ...*Image) (*Image, error) {
	return binaryImageOp(a, b, firstMask(mask), math.Max)
}

// AddScalar returns a + s (per channel), saturating to a's base type.
func AddScalar(a *Image, s OneOrPerChannel[float64], mask ...*Image) (*Image, error) {
	return scalarImageOp(a, s, firstMask(mask), func(x, y float64) float64 { return x + y })
}

// SubtractScalar returns a - s (per channel), saturating to a's base type.
func SubtractScalar(a *Image, s OneOrPerChannel[float64], mask ...*Image) (*Image, error) {
	return scalarImageOp(a, s, firstMask(mask), func(x, y float64) float64 { return x - y })
}

// MultiplyScalar returns a * s (per channel), saturating to a's base type.
func MultiplyScalar(a *Image, s OneOrPerChannel[float64], mask ...*Image) (*Image, error) {
	return scalarImageOp(a, s, firstMask(mask), func(x, y float64) float64 { return x * y })
}

// DivideScalar returns a / s (per channel), saturating to a's base type. A zero
// entry in s fails with InvalidArgument (unlike the image/image overload, which
// quietly substitutes the neutral divide-by-zero pixel value zero).
func DivideScalar(a *Image, s OneOrPerChannel[float64], mask ...*Image) (*Image, error) {
	for c := 0; c < a.channels; c++ {
		if s.At(c) == 0 {
			return nil, ferr.NewInvalidArgument("divide scalar is zero for channel %d", c)
		}
	}
	return scalarImageOp(a, s, firstMask(mask), func(x, y float64) float64 { return x / y })
}

// Abs returns |a|, element-wise.
func Abs(a *Image) *Image {
	out, _ := New(a.width, a.height, a.channels, a.dtype)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			for c := 0; c < a.channels; c++ {
				out.Set(x, y, c, math.Abs(a.At(x, y, c)))
			}
		}
	}
	return out
}

func firstMask(masks []*Image) *Image {
	if len(masks) == 0 {
		return nil
	}
	return masks[0]
}
