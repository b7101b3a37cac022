package schema

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for metadata lookup and registration.
var (
	// ErrNotAnEntity is returned when a type carries no table metadata.
	ErrNotAnEntity = errors.New("schema: not an entity")

	// ErrUnsupportedNativeType is returned for a type name outside the
	// closed native type set.
	ErrUnsupportedNativeType = errors.New("schema: unsupported native type")
)

// NotAnEntityError reports a metadata lookup for an unregistered type.
type NotAnEntityError struct {
	Type reflect.Type
}

// Error returns the error string.
func (e *NotAnEntityError) Error() string {
	return fmt.Sprintf("schema: %s is not a registered entity", e.Type)
}

// Is reports whether the target matches ErrNotAnEntity.
func (e *NotAnEntityError) Is(err error) bool {
	return err == ErrNotAnEntity
}

// NativeTypeError reports an unrecognized native type name.
type NativeTypeError struct {
	Name string
}

// Error returns the error string.
func (e *NativeTypeError) Error() string {
	return fmt.Sprintf("schema: unsupported native type %q", e.Name)
}

// Is reports whether the target matches ErrUnsupportedNativeType.
func (e *NativeTypeError) Is(err error) bool {
	return err == ErrUnsupportedNativeType
}
