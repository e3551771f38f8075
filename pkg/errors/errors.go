// Package errors provides structured error types for Nebula.
// Errors carry a code, a category, key/value context and remediation hints.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryConfig     Category = "config"     // Configuration loading/parsing errors
	CategoryMemory     Category = "memory"     // Holographic node store errors
	CategorySimulator  Category = "simulator"  // Auxiliary state simulator errors
	CategorySession    Category = "session"    // Session lifecycle errors
	CategoryCommand    Category = "command"    // Shell command errors
	CategoryValidation Category = "validation" // Input validation errors
	CategoryIO         Category = "io"         // File/IO errors
	CategoryInternal   Category = "internal"   // Internal/unexpected errors
)

// NebulaError is a structured error with context and suggestions.
type NebulaError struct {
	// Code identifies the error kind (e.g. "CAPACITY_EXCEEDED").
	Code string

	Category Category

	Message string

	// Context holds extra key/value details.
	Context map[string]string

	// Cause is the wrapped error, if any.
	Cause error

	// Suggestions are remediation steps shown to the user.
	Suggestions []string
}

// Error implements the error interface.
func (e *NebulaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause so errors.Is and errors.As can walk the chain.
func (e *NebulaError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a NebulaError with the same code.
func (e *NebulaError) Is(target error) bool {
	if t, ok := target.(*NebulaError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a NebulaError with the given code, category and message.
func New(code string, category Category, message string) *NebulaError {
	return &NebulaError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// Newf is New with a formatted message.
func Newf(code string, category Category, format string, args ...interface{}) *NebulaError {
	return New(code, category, fmt.Sprintf(format, args...))
}

// Wrap wraps err in a NebulaError.
func Wrap(err error, code string, category Category, message string) *NebulaError {
	return New(code, category, message).WithCause(err)
}

// WithContext adds a context entry and returns the error for chaining.
func (e *NebulaError) WithContext(key, value string) *NebulaError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause sets the wrapped error.
func (e *NebulaError) WithCause(cause error) *NebulaError {
	e.Cause = cause
	return e
}

// WithSuggestion appends a remediation hint.
func (e *NebulaError) WithSuggestion(suggestion string) *NebulaError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions appends several remediation hints.
func (e *NebulaError) WithSuggestions(suggestions ...string) *NebulaError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasContext returns true if the error has context entries.
func (e *NebulaError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *NebulaError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString renders the context as sorted key="value" pairs.
func (e *NebulaError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// AsNebulaError returns err as a NebulaError when it is one at the top of the chain.
func AsNebulaError(err error) (*NebulaError, bool) {
	if err == nil {
		return nil, false
	}
	if ne, ok := err.(*NebulaError); ok {
		return ne, true
	}
	return nil, false
}

// IsCode reports whether err is a NebulaError with the given code.
func IsCode(err error, code string) bool {
	if ne, ok := AsNebulaError(err); ok {
		return ne.Code == code
	}
	return false
}

// IsCategory reports whether err is a NebulaError in the given category.
func IsCategory(err error, category Category) bool {
	if ne, ok := AsNebulaError(err); ok {
		return ne.Category == category
	}
	return false
}

// -----------------------------------------------------------------------------
// Category Constructors
// -----------------------------------------------------------------------------

// ConfigError creates a configuration error.
func ConfigError(code, message string) *NebulaError {
	return New(code, CategoryConfig, message)
}

// ConfigErrorf creates a configuration error with a formatted message.
func ConfigErrorf(code, format string, args ...interface{}) *NebulaError {
	return Newf(code, CategoryConfig, format, args...)
}

// MemoryError creates a node store error.
func MemoryError(code, message string) *NebulaError {
	return New(code, CategoryMemory, message)
}

// MemoryErrorf creates a node store error with a formatted message.
func MemoryErrorf(code, format string, args ...interface{}) *NebulaError {
	return Newf(code, CategoryMemory, format, args...)
}

// SimulatorErrorf creates a simulator error with a formatted message.
func SimulatorErrorf(code, format string, args ...interface{}) *NebulaError {
	return Newf(code, CategorySimulator, format, args...)
}

// SessionError creates a session error.
func SessionError(code, message string) *NebulaError {
	return New(code, CategorySession, message)
}

// CommandError creates a shell command error.
func CommandError(code, message string) *NebulaError {
	return New(code, CategoryCommand, message)
}

// ValidationErrorf creates a validation error with a formatted message.
func ValidationErrorf(code, format string, args ...interface{}) *NebulaError {
	return Newf(code, CategoryValidation, format, args...)
}

// IOError creates a file/IO error.
func IOError(code, message string) *NebulaError {
	return New(code, CategoryIO, message)
}
