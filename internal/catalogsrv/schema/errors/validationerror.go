// Package errors provides the structured validation errors returned by
// request schema validation.
package errors

import (
	"bytes"
	"strings"
)

// ValidationError is one field-level validation failure.
type ValidationError struct {
	Field  string // JSON path of the offending field
	Value  any    // the value that failed
	ErrStr string // what was wrong with it
}

// Error allows ValidationError to satisfy the error interface.
func (ve ValidationError) Error() string {
	if len(ve.Field) > 0 {
		return ve.Field + ": " + ve.ErrStr
	}
	return ve.ErrStr
}

// ErrInvalidSchema indicates the request body could not be parsed at all.
var ErrInvalidSchema = ValidationError{
	Field:  "invalid input",
	ErrStr: "unable to parse request",
}

// ValidationErrors collects every failure found in one request.
type ValidationErrors []ValidationError

// Error allows ValidationErrors to satisfy the error interface.
func (ves ValidationErrors) Error() string {
	buff := bytes.NewBufferString("")
	for i := 0; i < len(ves); i++ {
		buff.WriteString(ves[i].Error())
		buff.WriteString("; ")
	}
	return strings.TrimSpace(buff.String())
}

// InQuotes returns s surrounded by single quotes for error messages.
func InQuotes(s string) string {
	return "'" + s + "'"
}
