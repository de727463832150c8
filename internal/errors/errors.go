// Package errors provides standardized error handling for treeorder.
// It defines the error kinds used across the engine, the host glue and the
// persistence layer, together with helpers for creating and wrapping them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Order error kinds
	InvalidReference
	BoundaryViolation
	MissingCollaborator
	// Path error kinds
	InvalidPath
	PathNotFound
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Store error kinds
	StoreOpenFailed
	StoreReadFailed
	StoreWriteFailed
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidReference:
		return "invalid reference"
	case BoundaryViolation:
		return "boundary violation"
	case MissingCollaborator:
		return "missing collaborator"
	case InvalidPath:
		return "invalid path"
	case PathNotFound:
		return "path not found"
	case InvalidConfig:
		return "invalid config"
	case ConfigNotFound:
		return "config not found"
	case StoreOpenFailed:
		return "store open failed"
	case StoreReadFailed:
		return "store read failed"
	case StoreWriteFailed:
		return "store write failed"
	}
	return "unknown"
}

// Common error constants for frequently occurring errors
var (
	ErrHostUnavailable = NewOrderError("tree view not available", "", MissingCollaborator, nil)
	ErrInvalidPath     = NewPathError("invalid path", "", InvalidPath, nil)
	ErrInvalidConfig   = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// PathError represents errors related to vault paths
type PathError struct {
	ApplicationError
	path string
}

// NewPathError creates a new path error
func NewPathError(msg string, path string, kind ErrorKind, err error) *PathError {
	return &PathError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		path:             path,
	}
}

// Error returns the path error message
func (e *PathError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the path associated with the error
func (e *PathError) Path() string {
	return e.path
}

// Is matches any PathError of the same kind, so callers can test against ErrInvalidPath.
func (e *PathError) Is(target error) bool {
	t, ok := target.(*PathError)
	return ok && t.kind == e.kind
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		param:            param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// OrderError is returned when an ordering operation was refused.
type OrderError struct {
	ApplicationError
	id string
}

// NewOrderError creates a new order error for the given item identifier
func NewOrderError(msg string, id string, kind ErrorKind, err error) *OrderError {
	return &OrderError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		id:               id,
	}
}

// Error returns the order error message
func (e *OrderError) Error() string {
	if e.id != "" {
		return fmt.Sprintf("%s: %s (%s)", e.msg, e.id, e.kind)
	}
	return e.ApplicationError.Error()
}

// ID returns the item identifier associated with the error
func (e *OrderError) ID() string {
	return e.id
}

// Is matches any OrderError of the same kind, so callers can test against ErrHostUnavailable.
func (e *OrderError) Is(target error) bool {
	t, ok := target.(*OrderError)
	return ok && t.kind == e.kind
}

// StoreError represents errors raised by the settings store
type StoreError struct {
	ApplicationError
	operation string
	context   map[string]interface{}
}

// NewStoreError creates a new store error
func NewStoreError(msg string, kind ErrorKind, err error) *StoreError {
	return &StoreError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		context:          make(map[string]interface{}),
	}
}

// WithOperation adds operation information to the store error
func (e *StoreError) WithOperation(operation string) *StoreError {
	e.operation = operation
	return e
}

// WithContext adds context information to the store error
func (e *StoreError) WithContext(key string, value interface{}) *StoreError {
	e.context[key] = value
	return e
}

// Error returns the store error message
func (e *StoreError) Error() string {
	if e.operation != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: operation=%s: %v", e.msg, e.operation, e.err)
		}
		return fmt.Sprintf("%s: operation=%s", e.msg, e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the store operation associated with the error
func (e *StoreError) Operation() string {
	return e.operation
}

// Context returns the context information associated with the error
func (e *StoreError) Context() map[string]interface{} {
	return e.context
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{msg: msg, kind: Unknown}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{msg: fmt.Sprintf(format, args...), kind: Unknown}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err, kind: Unknown}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: fmt.Sprintf(format, args...), err: err, kind: Unknown}
}

// KindOf returns the kind of the first application error in err's chain.
func KindOf(err error) ErrorKind {
	type kinded interface{ Kind() ErrorKind }
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsHostUnavailable checks if the error means the tree view is not ready yet
func IsHostUnavailable(err error) bool {
	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		return orderErr.Kind() == MissingCollaborator
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsStoreError checks if the error came from the settings store
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
