// Package exception provides the structured error types used across the job
// orchestration engine. It carries the distinction the engine's failure model
// is built on: item-level failures, which are recorded per item and never
// abort a job, and systemic failures, which terminate the owning job.
package exception

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// errorRegistry maps error names to sentinel error instances so errors can be
// classified by name (e.g. in configuration or logs) via errors.Is.
var errorRegistry = make(map[string]error)

// registryMutex protects access to errorRegistry.
var registryMutex sync.RWMutex

// RegisterErrorType registers an error type in the registry.
// If prototype is nil or name is empty, this function panics.
func RegisterErrorType(name string, prototype error) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if name == "" {
		panic("Error type name cannot be empty")
	}
	if prototype == nil {
		panic(fmt.Sprintf("Cannot register nil prototype for name: %s", name))
	}

	errorRegistry[name] = prototype
}

// IsErrorTypeRegistered checks if the specified error type name is registered.
func IsErrorTypeRegistered(name string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, ok := errorRegistry[name]
	return ok
}

// BatchError is the structured error type raised by the engine's components.
// It records the component the error originated in, a message, the wrapped
// original error, and whether the failure is systemic (collaborator
// infrastructure unavailable, configuration invalid) as opposed to an
// expected per-item failure.
type BatchError struct {
	// Module indicates the component where the error occurred
	// (e.g. "executor", "registry", "certificate_issuer").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// isSystemic marks failures of the per-item operation's infrastructure
	// itself; these abort the owning job rather than a single item.
	isSystemic bool
	// StackTrace is the stack trace captured at construction (for debugging).
	StackTrace string
}

// NewBatchError creates a new BatchError instance.
// systemic marks the error as a job-aborting infrastructure failure.
func NewBatchError(module, message string, originalErr error, systemic bool) *BatchError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &BatchError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isSystemic:  systemic,
		StackTrace:  string(buf[:n]),
	}
}

// NewSystemicError creates a BatchError flagged as systemic. Systemic errors
// force the owning job into its failed state.
func NewSystemicError(module, message string, originalErr error) *BatchError {
	return NewBatchError(module, message, originalErr, true)
}

// NewBatchErrorf creates a non-systemic BatchError using a format string.
// If the final argument is an error it is extracted and wrapped.
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	args := a

	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}

	return NewBatchError(module, fmt.Sprintf(format, args...), originalErr, false)
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// IsSystemicFlag returns whether this error is flagged systemic.
func (e *BatchError) IsSystemicFlag() bool {
	return e.isSystemic
}

// IsBatchError determines if the given error is of type BatchError.
func IsBatchError(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	return errors.As(err, &be)
}

// IsSystemic determines whether an error represents a systemic failure of the
// per-item operation infrastructure. The systemic flag of a BatchError found
// anywhere in the chain takes precedence; otherwise common transport-level
// failure signatures are matched.
func IsSystemic(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.IsSystemicFlag()
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "service unavailable")
}

// IsErrorOfType checks if an error matches a registered sentinel name, an
// error-message substring, or a Go type name anywhere in its chain.
func IsErrorOfType(err error, errorTypeName string) bool {
	if err == nil {
		return false
	}

	registryMutex.RLock()
	targetError, ok := errorRegistry[errorTypeName]
	registryMutex.RUnlock()

	if ok {
		if errors.Is(err, targetError) {
			return true
		}
	}

	currentErr := err
	for currentErr != nil {
		if strings.Contains(currentErr.Error(), errorTypeName) {
			return true
		}

		errType := reflect.TypeOf(currentErr)
		if errType != nil {
			if errType.String() == errorTypeName || (errType.Kind() == reflect.Ptr && errType.Elem().String() == errorTypeName) {
				return true
			}
		}

		currentErr = errors.Unwrap(currentErr)
	}

	return false
}

func init() {
	// Register common error types so they can be referenced by name.
	RegisterErrorType("context.DeadlineExceeded", context.DeadlineExceeded)
	RegisterErrorType("context.Canceled", context.Canceled)
}

// ExtractErrorMessage extracts the error message string from an error.
// For BatchError it returns the cleaner Message field.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
