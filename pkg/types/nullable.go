// Package types provides nullable value types for wire payloads where
// "absent", "null", and "zero" carry different meanings.
package types

// Nullable is implemented by types that can represent an explicit null
// in addition to their zero value.
type Nullable interface {
	// IsNil reports whether the value is null.
	IsNil() bool
}
