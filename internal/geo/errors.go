package geo

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a codec failure.
type Kind uint8

const (
	KindMalformed      Kind = iota + 1 // bad syntax, cardinality or node name
	KindOutOfRange                     // coordinate outside its bound
	KindInvalidFeature                 // structurally invalid geometry
	KindUnimplemented                  // unsupported export mode or format
)

// String returns the human readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed input"
	case KindOutOfRange:
		return "out of range"
	case KindInvalidFeature:
		return "invalid feature"
	case KindUnimplemented:
		return "unimplemented"
	default:
		return "unknown"
	}
}

// Error is returned by every constructor, decoder and encoder of the codec.
// Format is empty until a decoder boundary tags it.
type Error struct {
	Value  any
	Cause  error
	Format string
	Detail string
	Kind   Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrMalformed      = &Error{Kind: KindMalformed}
	ErrOutOfRange     = &Error{Kind: KindOutOfRange}
	ErrInvalidFeature = &Error{Kind: KindInvalidFeature}
	ErrUnimplemented  = &Error{Kind: KindUnimplemented}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Format != "" {
		b.WriteString(e.Format)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " (value %v)", e.Value)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with a
// Format only matches errors tagged with that format.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Format == "" || t.Format == e.Format
}

// Malformed creates a malformed-input error.
func Malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Detail: fmt.Sprintf(format, args...)}
}

// InvalidFeature creates a structural violation error.
func InvalidFeature(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidFeature, Detail: fmt.Sprintf(format, args...)}
}

// Unimplemented creates an error for an unsupported operation on a geometry type.
func Unimplemented(op string, t Type) *Error {
	return &Error{Kind: KindUnimplemented, Detail: op + " is not supported for " + t.String()}
}

func outOfRange(axis string, v float64) *Error {
	return &Error{Kind: KindOutOfRange, Detail: axis, Value: v}
}

// Tag attaches a format name to a codec error. It is applied once, at the
// outermost decoder boundary; errors already tagged and errors that are not
// codec errors are returned unchanged.
func Tag(format string, err error) error {
	if err == nil {
		return nil
	}

	var ge *Error
	if !errors.As(err, &ge) {
		return err
	}
	if ge.Format != "" {
		return err
	}

	tagged := *ge
	tagged.Format = format
	return &tagged
}
