package pixel

import "github.com/airbusgeo/imagefusion/internal/ferr"

// OneOrPerChannel models a "vector of size 1 or C" scalar parameter: a value that is
// either shared by every channel or specifies one value per channel, broadcast
// explicitly at the point of use.
type OneOrPerChannel[T any] struct {
	values []T
}

// One builds an OneOrPerChannel that broadcasts a single value to every channel.
func One[T any](v T) OneOrPerChannel[T] {
	return OneOrPerChannel[T]{values: []T{v}}
}

// PerChannel builds an OneOrPerChannel with one explicit value per channel.
func PerChannel[T any](v ...T) OneOrPerChannel[T] {
	return OneOrPerChannel[T]{values: append([]T(nil), v...)}
}

// At returns the value for channel c, broadcasting the single stored value if this
// OneOrPerChannel was built with One.
func (o OneOrPerChannel[T]) At(c int) T {
	if len(o.values) == 1 {
		return o.values[0]
	}
	return o.values[c]
}

// checkChannels validates that o is either size 1 or exactly `channels`.
func (o OneOrPerChannel[T]) checkChannels(channels int) error {
	if len(o.values) != 1 && len(o.values) != channels {
		return ferr.NewInvalidArgument("scalar parameter has %d values, want 1 or %d", len(o.values), channels)
	}
	return nil
}
