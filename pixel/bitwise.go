package pixel

import "github.com/airbusgeo/imagefusion/internal/ferr"

// bitwiseOp applies f to the raw integer bit pattern of every sample of a and b,
// requiring matching type and geometry. A mask never changes the base type of the
// result.
func bitwiseOp(a, b *Image, f func(x, y int64) int64) (*Image, error) {
	if a.dtype != b.dtype {
		return nil, ferr.NewImageType("bitwise op requires matching type, got %s and %s", a.dtype, b.dtype)
	}
	if !a.dtype.IsInteger() {
		return nil, ferr.NewImageType("bitwise op requires an integer type, got %s", a.dtype)
	}
	if a.width != b.width || a.height != b.height || a.channels != b.channels {
		return nil, ferr.NewSize("bitwise op requires matching geometry")
	}
	out, _ := New(a.width, a.height, a.channels, a.dtype)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			for c := 0; c < a.channels; c++ {
				out.Set(x, y, c, float64(f(int64(a.At(x, y, c)), int64(b.At(x, y, c)))))
			}
		}
	}
	return out, nil
}

// And returns the bitwise AND of a and b.
func And(a, b *Image) (*Image, error) {
	return bitwiseOp(a, b, func(x, y int64) int64 { return x & y })
}

// Or returns the bitwise OR of a and b.
func Or(a, b *Image) (*Image, error) {
	return bitwiseOp(a, b, func(x, y int64) int64 { return x | y })
}

// Xor returns the bitwise XOR of a and b.
func Xor(a, b *Image) (*Image, error) {
	return bitwiseOp(a, b, func(x, y int64) int64 { return x ^ y })
}

// Not returns the bitwise complement of a, so that Not(Not(a)) == a. Signed types
// complement via the two's-complement identity ^v == -v-1 (true at any width);
// unsigned types complement within their bit width.
func Not(a *Image) *Image {
	out, _ := New(a.width, a.height, a.channels, a.dtype)
	signed := a.dtype == I8 || a.dtype == I16 || a.dtype == I32
	bits := uint(a.dtype.Size() * 8)
	allOnes := int64(1)<<bits - 1
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			for c := 0; c < a.channels; c++ {
				v := int64(a.At(x, y, c))
				var nv int64
				if signed {
					nv = ^v
				} else {
					nv = (^v) & allOnes
				}
				out.Set(x, y, c, float64(nv))
			}
		}
	}
	return out
}
