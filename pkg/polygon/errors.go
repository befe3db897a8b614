package polygon

import (
	"errors"
	"fmt"
)

// Kind separates splits that are impossible for the given input from
// splits that hit an internal inconsistency.
type Kind int

const (
	// Degenerate failures are properties of the input: the polygon does
	// not cross the surface, or the surface cannot be followed within
	// the polygon.
	Degenerate Kind = iota
	// Invariant failures mean the boundary graph is inconsistent. The
	// input should be logged and dropped rather than retried.
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Degenerate:
		return "degenerate"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Degenerate causes.
var (
	ErrTooFewCrossings = errors.New("fewer than two surface crossings")
	ErrOddCrossings    = errors.New("odd number of surface crossings")
	ErrStitchEscapes   = errors.New("stitch leaves the polygon footprint")
)

// Invariant causes.
var (
	ErrNoIntersection  = errors.New("edge changes side but no intersection was found")
	ErrAmbiguousStitch = errors.New("crossing has stitches in both directions")
	ErrOpenWalk        = errors.New("boundary walk does not close")
	ErrNotTiled        = errors.New("fragments do not tile the polygon")
)

// SplitError is returned by SplitAgainstSurface. Err is one of the
// package's cause errors, possibly wrapping a surface error.
type SplitError struct {
	Kind Kind
	Err  error
}

func (e SplitError) Error() string {
	return fmt.Sprintf("polygon: split (%s): %v", e.Kind, e.Err)
}

func (e SplitError) Unwrap() error {
	return e.Err
}

// IsInvariantViolation reports whether err is a SplitError of kind
// Invariant.
func IsInvariantViolation(err error) bool {
	var se SplitError
	return errors.As(err, &se) && se.Kind == Invariant
}

func degenerate(err error) error {
	return SplitError{Kind: Degenerate, Err: err}
}

func invariant(format string, args ...any) error {
	return SplitError{Kind: Invariant, Err: fmt.Errorf(format, args...)}
}
