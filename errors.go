package zaiko

import (
	"errors"
	"fmt"
)

// Kind classifies the recoverable error conditions a World or Schema
// can report, per the error taxonomy: every condition a caller can
// reasonably react to is a value, never a panic.
type Kind int

const (
	// CapacityExceeded: a Schema index space (components, arrays, or
	// tags) has reached its 256-slot capacity.
	CapacityExceeded Kind = iota
	// UnknownType: a type referenced without prior registration.
	UnknownType
	// EntityNotFound: the target id is not currently live.
	EntityNotFound
	// ComponentMissing: the entity does not carry the requested component.
	ComponentMissing
	// ArrayMissing: the entity does not carry the requested array.
	ArrayMissing
	// CycleRejected: set_parent would create a parent cycle.
	CycleRejected
	// ConcurrentModification: a query iterator observed a chunk version
	// mismatch between snapshot and current state.
	ConcurrentModification
	// IndexOutOfRange: an array element access past current length.
	IndexOutOfRange
	// DuplicateComponent: named for API completeness (spec.md §7's error
	// taxonomy lists it), but unreachable under the fixed overwrite-and-
	// bump policy — AddComponent never returns it (SPEC_FULL.md §13).
	DuplicateComponent
	// DuplicateArray: same status as DuplicateComponent, for CreateArray.
	DuplicateArray
)

func (k Kind) String() string {
	switch k {
	case CapacityExceeded:
		return "CapacityExceeded"
	case UnknownType:
		return "UnknownType"
	case EntityNotFound:
		return "EntityNotFound"
	case ComponentMissing:
		return "ComponentMissing"
	case ArrayMissing:
		return "ArrayMissing"
	case CycleRejected:
		return "CycleRejected"
	case ConcurrentModification:
		return "ConcurrentModification"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case DuplicateComponent:
		return "DuplicateComponent"
	case DuplicateArray:
		return "DuplicateArray"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned for every recoverable
// condition in this package. Callers match on Kind rather than on
// error identity, since the same Kind can be raised with different
// detail across call sites.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is supports errors.Is(err, zaiko.CapacityExceeded-shaped sentinels)
// by comparing Kind, so callers can do:
//
//	if errors.Is(err, zaiko.ErrEntityNotFound) { ... }
//
// or more conveniently use the ErrorKind accessor below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

// Sentinel errors for errors.Is, one per Kind. Detail is ignored by Is,
// so these match any *Error of the same Kind regardless of where it was
// constructed.
var (
	ErrCapacityExceeded       = &Error{Kind: CapacityExceeded}
	ErrUnknownType            = &Error{Kind: UnknownType}
	ErrEntityNotFound         = &Error{Kind: EntityNotFound}
	ErrComponentMissing       = &Error{Kind: ComponentMissing}
	ErrArrayMissing           = &Error{Kind: ArrayMissing}
	ErrCycleRejected          = &Error{Kind: CycleRejected}
	ErrConcurrentModification = &Error{Kind: ConcurrentModification}
	ErrIndexOutOfRange        = &Error{Kind: IndexOutOfRange}
	ErrDuplicateComponent     = &Error{Kind: DuplicateComponent}
	ErrDuplicateArray         = &Error{Kind: DuplicateArray}
)

// ErrorKind extracts the Kind from err if it is (or wraps) a *Error.
func ErrorKind(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
