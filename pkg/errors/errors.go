// Package errors provides custom error types for the fixgen engine.
// These errors enable programmatic error checking and carry enough
// context to diagnose a failed generation run from its logs alone.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the fixgen engine
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates that the run configuration is unusable
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDepleted indicates that a reference pool had no eligible identifiers
	ErrDepleted = errors.New("identifier pool depleted")

	// ErrMissingRuleSet indicates an identity cluster reached merge without a rule set
	ErrMissingRuleSet = errors.New("missing rule set")

	// ErrExhausted indicates a bounded stream has produced all requested records
	ErrExhausted = errors.New("stream exhausted")

	// ErrCyclicSchema indicates the required-reference graph has no valid ordering
	ErrCyclicSchema = errors.New("cyclic schema dependencies")
)

// ConfigError represents a configuration error detected at setup,
// before any record has been produced.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// DepletionError indicates a required reference field could not be filled
// because no identifier of any target type has been published yet.
type DepletionError struct {
	EntityType string
	Field      string
	Targets    []string
}

// Error implements the error interface
func (e *DepletionError) Error() string {
	return fmt.Sprintf("reference pool depleted for %s.%s (targets: %s)",
		e.EntityType, e.Field, strings.Join(e.Targets, ", "))
}

// Is implements errors.Is support
func (e *DepletionError) Is(target error) bool {
	return target == ErrDepleted
}

// NewDepletionError creates a new DepletionError
func NewDepletionError(entityType, field string, targets []string) *DepletionError {
	return &DepletionError{EntityType: entityType, Field: field, Targets: targets}
}

// MergeError represents a fatal inconsistency found by the merge engine,
// such as an identity cluster flushed without a paired rule set.
type MergeError struct {
	Identity   string
	EntityType string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if e.Identity != "" {
		return fmt.Sprintf("merge error for %s %s: %s", e.EntityType, e.Identity, e.Message)
	}
	return fmt.Sprintf("merge error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError
func NewMergeError(entityType, identity, message string, err error) *MergeError {
	return &MergeError{
		EntityType: entityType,
		Identity:   identity,
		Message:    message,
		Err:        err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsDepleted checks if an error is a pool depletion error
func IsDepleted(err error) bool {
	return errors.Is(err, ErrDepleted)
}

// IsExhausted checks if an error marks the end of a bounded stream
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}
