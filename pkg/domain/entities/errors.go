package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is wrapped by repositories when a key has no record
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is wrapped by boundary parsers for malformed records
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigurationError reports an invalid static setup detected before any computation starts
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError builds a ConfigurationError with a formatted reason
func NewConfigurationError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CyclicBOMError reports a cycle in the BOM graph. Path starts and ends with the same code.
type CyclicBOMError struct {
	Path []ArticleCode
}

func (e *CyclicBOMError) Error() string {
	parts := make([]string, len(e.Path))
	for i, code := range e.Path {
		parts[i] = string(code)
	}
	return "cyclic BOM: " + strings.Join(parts, " -> ")
}

// UnresolvedReferenceError reports a code that does not resolve to a known record
type UnresolvedReferenceError struct {
	Kind string
	Code string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference: %s", e.Kind, e.Code)
}

// ExternalProviderError reports a failure of an external collaborator such as a routing service
type ExternalProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *ExternalProviderError) Error() string {
	msg := fmt.Sprintf("provider %s: %s failed", e.Provider, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExternalProviderError) Unwrap() error {
	return e.Err
}
