// Package errs defines the error kinds returned at the public boundaries of plume.
//
// Every data-dependent failure (bad geometry, unknown handle, full generator) is
// reported as an error value carrying a [Kind], so callers can branch with
// [KindOf] or match a sentinel with errors.Is. Panics are reserved for
// programmer errors such as a non-positive timestep.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindConstruction: invalid input when building a body or a generator.
	KindConstruction
	// KindCapacity: a force generator is full.
	KindCapacity
	// KindLookup: unknown handle or anchor.
	KindLookup
	// KindNumeric: degenerate geometry or numeric configuration.
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindCapacity:
		return "capacity"
	case KindLookup:
		return "lookup"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

var (
	ErrNonPositiveMass    = errors.New("plume: mass must be positive")
	ErrNonConvex          = errors.New("plume: only convex polygons are supported")
	ErrInvalidSpring      = errors.New("plume: invalid spring parameters")
	ErrCapacity           = errors.New("plume: force generator at maximum capacity")
	ErrUnknownID          = errors.New("plume: unknown id")
	ErrInvalidAnchor      = errors.New("plume: invalid anchor index")
	ErrDegenerateGeometry = errors.New("plume: degenerate geometry")
	ErrRayMiss            = errors.New("plume: ray does not intersect polygon")
	ErrUnknownIntegrator  = errors.New("plume: unknown integrator")
	ErrInvalidConstraint  = errors.New("plume: invalid constraint parameters")
	ErrInvalidConfig      = errors.New("plume: invalid configuration value")
)

// Error wraps an underlying error with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
