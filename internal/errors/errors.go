// Package errors provides error handling utilities.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeMissingFragility indicates no fragility function exists for a
	// (taxonomy, intensity measure) pair
	TypeMissingFragility Type = "MISSING_FRAGILITY"

	// TypeMissingIntensity indicates no intensity value is available for a cell
	TypeMissingIntensity Type = "MISSING_INTENSITY"

	// TypeUnmappableClass indicates a taxonomy class with no schema mapping entry
	TypeUnmappableClass Type = "UNMAPPABLE_CLASS"

	// TypeInconsistentDamageStates indicates a fragility function defining fewer
	// damage states than the exposure already records
	TypeInconsistentDamageStates Type = "INCONSISTENT_DAMAGE_STATES"

	// TypeMissingLossRatio indicates a damage state with no loss ratio
	TypeMissingLossRatio Type = "MISSING_LOSS_RATIO"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates a parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error (or any error it wraps) is of a specific type
func IsType(err error, t Type) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Type == t {
				return true
			}
			err = e.Cause
			continue
		}
		if u, ok := err.(interface{ Unwrap() error }); ok {
			err = u.Unwrap()
			continue
		}
		return false
	}
	return false
}

// MissingFragility creates a missing fragility function error
func MissingFragility(taxonomy, imt string) *Error {
	return Newf(TypeMissingFragility, "no fragility function for taxonomy %q and intensity measure %q", taxonomy, imt)
}

// MissingIntensity creates a missing intensity error
func MissingIntensity(cellID, imt string) *Error {
	return Newf(TypeMissingIntensity, "no %s intensity value for cell %q", imt, cellID)
}

// UnmappableClass creates an unmappable class error
func UnmappableClass(taxonomy, targetSchema string) *Error {
	return Newf(TypeUnmappableClass, "taxonomy %q has no mapping into schema %q", taxonomy, targetSchema)
}

// InconsistentDamageStates creates a damage state cardinality error
func InconsistentDamageStates(taxonomy string, exposureStates, fragilityStates int) *Error {
	return Newf(TypeInconsistentDamageStates,
		"exposure records %d damage states for taxonomy %q but fragility defines only %d",
		exposureStates, taxonomy, fragilityStates)
}

// MissingLossRatio creates a missing loss ratio error
func MissingLossRatio(schema string, state int) *Error {
	return Newf(TypeMissingLossRatio, "no loss ratio for damage state D%d in schema %q", state, schema)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
