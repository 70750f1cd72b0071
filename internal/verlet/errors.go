package verlet

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrNotFound indicates a point, span or skin id that does not exist.
	ErrNotFound = errors.New("verlet: not found")

	// ErrDegenerateGeometry indicates two coincident points where a direction
	// or ratio is required. It is absorbed inside a tick and never aborts it.
	ErrDegenerateGeometry = errors.New("verlet: degenerate geometry (zero distance)")

	// ErrInvalidConfiguration indicates a rejected setting or point attribute.
	ErrInvalidConfiguration = errors.New("verlet: invalid configuration")

	// ErrNonFinite indicates a NaN or Inf coordinate.
	ErrNonFinite = errors.New("verlet: non-finite coordinate")
)

// Kind names the store an id belongs to.
type Kind string

const (
	KindPoint Kind = "point"
	KindSpan  Kind = "span"
	KindSkin  Kind = "skin"
)

// LookupError reports an id missing from one of the stores.
type LookupError struct {
	Kind Kind
	ID   int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("verlet: %s %d not found", e.Kind, e.ID)
}

func (e *LookupError) Unwrap() error {
	return ErrNotFound
}

// StaleSpanError reports a span whose endpoint was removed from the engine.
type StaleSpanError struct {
	SpanID  int
	PointID int
}

func (e *StaleSpanError) Error() string {
	return fmt.Sprintf("verlet: span %d references removed point %d", e.SpanID, e.PointID)
}

func (e *StaleSpanError) Unwrap() error {
	return ErrNotFound
}

// StaleSkinError reports a skin whose outline includes a removed point.
type StaleSkinError struct {
	SkinID  int
	PointID int
}

func (e *StaleSkinError) Error() string {
	return fmt.Sprintf("verlet: skin %d references removed point %d", e.SkinID, e.PointID)
}

func (e *StaleSkinError) Unwrap() error {
	return ErrNotFound
}

// PointError wraps an error with the id of the point that caused it.
type PointError struct {
	ID      int
	Wrapped error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("point %d: %v", e.ID, e.Wrapped)
}

func (e *PointError) Unwrap() error {
	return e.Wrapped
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
