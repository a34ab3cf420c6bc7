package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAndOrXor(t *testing.T) {
	a := fill(t, 1, 1, 1, U8, 0b1100)
	b := fill(t, 1, 1, 1, U8, 0b1010)

	and, err := And(a, b)
	require.NoError(t, err)
	require.Equal(t, float64(0b1000), and.At(0, 0, 0))

	or, err := Or(a, b)
	require.NoError(t, err)
	require.Equal(t, float64(0b1110), or.At(0, 0, 0))

	xor, err := Xor(a, b)
	require.NoError(t, err)
	require.Equal(t, float64(0b0110), xor.At(0, 0, 0))
}

func TestBitwiseRequiresMatchingType(t *testing.T) {
	a := fill(t, 1, 1, 1, U8, 1)
	b := fill(t, 1, 1, 1, I16, 1)
	_, err := And(a, b)
	require.Error(t, err)
}

func TestBitwiseRejectsFloatTypes(t *testing.T) {
	a := fill(t, 1, 1, 1, F32, 1)
	b := fill(t, 1, 1, 1, F32, 1)
	_, err := And(a, b)
	require.Error(t, err)
}

func TestNotIsInvolutionForUnsignedType(t *testing.T) {
	a := fill(t, 1, 1, 1, U8, 0b00110101)
	require.Equal(t, a.At(0, 0, 0), Not(Not(a)).At(0, 0, 0))
	require.NotEqual(t, a.At(0, 0, 0), Not(a).At(0, 0, 0))
}

func TestNotIsInvolutionForSignedType(t *testing.T) {
	a := fill(t, 1, 1, 1, I16, 42)
	require.Equal(t, a.At(0, 0, 0), Not(Not(a)).At(0, 0, 0))
	require.Equal(t, -43.0, Not(a).At(0, 0, 0))
}
