// Package ferr defines the typed error taxonomy shared by every fusor and by the
// pixel core: InvalidArgument, SizeError, ImageTypeError, NotFound, FileFormatError,
// IoError and Logic. All validation errors are raised during ProcessOptions or at the
// start of Predict; nothing past that point should produce one of these.
package ferr

import (
	"errors"
	"fmt"
)

// Kind identifies which error taxonomy bucket an error belongs to.
type Kind int

const (
	// InvalidArgument marks a bad option combination or bad parse input.
	InvalidArgument Kind = iota
	// SizeError marks geometry mismatches between images, masks or an algorithm's footprint.
	SizeError
	// ImageTypeError marks base-type or channel-count mismatches.
	ImageTypeError
	// NotFound marks a required (tag, date) missing from a MultiResImage.
	NotFound
	// FileFormatError is surfaced by the raster I/O collaborator.
	FileFormatError
	// IoError is surfaced by the raster I/O collaborator.
	IoError
	// Logic marks a precondition failure that indicates a programming defect.
	Logic
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case SizeError:
		return "SizeError"
	case ImageTypeError:
		return "ImageTypeError"
	case NotFound:
		return "NotFound"
	case FileFormatError:
		return "FileFormatError"
	case IoError:
		return "IoError"
	case Logic:
		return "Logic"
	default:
		return "Unknown"
	}
}

// Error is a typed error tagged with a Kind. errors.As extracts it from a wrapped
// chain, Unwrap exposes any wrapped cause, and Is matches a Kind-only template.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error of the same Kind with an empty Msg, so
// callers can match a bucket with errors.Is(err, &ferr.Error{Kind: ferr.SizeError});
// IsKind is the shorter form of the same test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewInvalidArgument builds an InvalidArgument error.
func NewInvalidArgument(format string, args ...interface{}) *Error {
	return newf(InvalidArgument, format, args...)
}

// NewSize builds a SizeError error.
func NewSize(format string, args ...interface{}) *Error {
	return newf(SizeError, format, args...)
}

// NewImageType builds an ImageTypeError error.
func NewImageType(format string, args ...interface{}) *Error {
	return newf(ImageTypeError, format, args...)
}

// NewNotFound builds a NotFound error.
func NewNotFound(format string, args ...interface{}) *Error {
	return newf(NotFound, format, args...)
}

// NewLogic builds a Logic error.
func NewLogic(format string, args ...interface{}) *Error {
	return newf(Logic, format, args...)
}

// WrapIO tags an error surfaced by the raster I/O collaborator as IoError.
func WrapIO(cause error) *Error {
	return &Error{Kind: IoError, Msg: "raster i/o", Cause: cause}
}

// WrapFileFormat tags an error surfaced by the raster I/O collaborator as FileFormatError.
func WrapFileFormat(cause error) *Error {
	return &Error{Kind: FileFormatError, Msg: "file format", Cause: cause}
}

// IsKind reports whether err (or anything it wraps) is a *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// multiError combines several independent validation failures collected during a
// single ProcessOptions pass, the same shape as godal's own combine()/multiError
// pair, adapted here to keep each wrapped error individually typed.
type multiError struct {
	errs []error
}

func (me *multiError) Error() string {
	s := me.errs[0].Error()
	for _, e := range me.errs[1:] {
		s += "; " + e.Error()
	}
	return s
}

func (me *multiError) Unwrap() []error { return me.errs }

// Join combines zero or more errors (skipping nils) the way ProcessOptions
// accumulates every validation failure before returning, instead of stopping at
// the first one.
func Join(errs ...error) error {
	var nonNil []error
	for _, e := range errs {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &multiError{errs: nonNil}
	}
}
