package tsql

import (
	"errors"
	"fmt"

	"github.com/queryfront/tsql/schema"
)

// Sentinel errors raised during statement compilation. All of them are
// programming or input errors, never transient: nothing in this package
// retries.
var (
	// ErrUnknownField is returned when the query tree references a
	// field the entity has no descriptor for.
	ErrUnknownField = errors.New("tsql: unknown field")

	// ErrIncompatibleClauses is returned for clause combinations with
	// no defined statement shape, such as first() with values().
	ErrIncompatibleClauses = errors.New("tsql: incompatible query clauses")

	// ErrFieldNotAggregated is returned when a select clause names a
	// field that is not part of the aggregation.
	ErrFieldNotAggregated = errors.New("tsql: field not aggregated")

	// ErrNullComparison is returned for an ordered comparison (lt, le,
	// gt, ge) against a null value. Only eq and ne translate null.
	ErrNullComparison = errors.New("tsql: null value in ordered comparison")

	// ErrUnsupportedCoercion is returned when a source value cannot be
	// coerced to or from a field's native type.
	ErrUnsupportedCoercion = errors.New("tsql: unsupported coercion")
)

// UnknownFieldError reports a query reference to an unmapped field.
type UnknownFieldError struct {
	Table string
	Field string
}

// Error returns the error string.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("tsql: unknown field %s on %s", e.Field, e.Table)
}

// Is reports whether the target matches ErrUnknownField.
func (e *UnknownFieldError) Is(err error) bool {
	return err == ErrUnknownField
}

// CoercionError reports a value that cannot be represented in (or read
// back from) a native type.
type CoercionError struct {
	Type   schema.NativeType
	Source string // Go type of the offending value
}

// Error returns the error string.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("tsql: cannot coerce %s to native type %s", e.Source, e.Type)
}

// Is reports whether the target matches ErrUnsupportedCoercion.
func (e *CoercionError) Is(err error) bool {
	return err == ErrUnsupportedCoercion
}
