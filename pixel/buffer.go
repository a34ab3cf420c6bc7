package pixel

import "math"

// buffer is the shared backing store for an Image and all of its crops. Crops hold
// a pointer to the same buffer and differ only in their (x0,y0,width,height) view;
// Clone allocates an independent buffer.
type buffer struct {
	dtype DataType
	u8    []uint8
	i8    []int8
	u16   []uint16
	i16   []int16
	i32   []int32
	f32   []float32
	f64   []float64
}

func newBuffer(dt DataType, n int) *buffer {
	b := &buffer{dtype: dt}
	switch dt {
	case U8:
		b.u8 = make([]uint8, n)
	case I8:
		b.i8 = make([]int8, n)
	case U16:
		b.u16 = make([]uint16, n)
	case I16:
		b.i16 = make([]int16, n)
	case I32:
		b.i32 = make([]int32, n)
	case F32:
		b.f32 = make([]float32, n)
	case F64:
		b.f64 = make([]float64, n)
	default:
		panic("pixel: unsupported DataType")
	}
	return b
}

func (b *buffer) getf(i int) float64 {
	switch b.dtype {
	case U8:
		return float64(b.u8[i])
	case I8:
		return float64(b.i8[i])
	case U16:
		return float64(b.u16[i])
	case I16:
		return float64(b.i16[i])
	case I32:
		return float64(b.i32[i])
	case F32:
		return float64(b.f32[i])
	case F64:
		return b.f64[i]
	default:
		panic("pixel: unsupported DataType")
	}
}

// setf writes v into slot i, saturating to the base type's representable range.
// Integer types round-to-nearest before clamping; float types never round — F64
// stores v unchanged, F32 clamps into +-MaxFloat32 (infinities included). NaN is
// stored as 0 in every type except F64.
func (b *buffer) setf(i int, v float64) {
	switch b.dtype {
	case U8:
		b.u8[i] = uint8(clampRound(v, 0, 255))
	case I8:
		b.i8[i] = int8(clampRound(v, -128, 127))
	case U16:
		b.u16[i] = uint16(clampRound(v, 0, 65535))
	case I16:
		b.i16[i] = int16(clampRound(v, -32768, 32767))
	case I32:
		b.i32[i] = int32(clampRound(v, -2147483648, 2147483647))
	case F32:
		b.f32[i] = float32(clamp(v, -math.MaxFloat32, math.MaxFloat32))
	case F64:
		b.f64[i] = v
	default:
		panic("pixel: unsupported DataType")
	}
}

func clampRound(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(math.Round(v), min, max)
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (b *buffer) clone() *buffer {
	nb := &buffer{dtype: b.dtype}
	switch b.dtype {
	case U8:
		nb.u8 = append([]uint8(nil), b.u8...)
	case I8:
		nb.i8 = append([]int8(nil), b.i8...)
	case U16:
		nb.u16 = append([]uint16(nil), b.u16...)
	case I16:
		nb.i16 = append([]int16(nil), b.i16...)
	case I32:
		nb.i32 = append([]int32(nil), b.i32...)
	case F32:
		nb.f32 = append([]float32(nil), b.f32...)
	case F64:
		nb.f64 = append([]float64(nil), b.f64...)
	}
	return nb
}
