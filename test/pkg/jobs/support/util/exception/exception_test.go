package exception_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
)

var errSentinel = errors.New("sentinel failure")

func TestNewBatchError(t *testing.T) {
	original := errors.New("original error")
	be := exception.NewBatchError("registry", "save failed", original, false)

	assert.Equal(t, "registry", be.Module)
	assert.Equal(t, "save failed", be.Message)
	assert.Equal(t, original, be.OriginalErr)
	assert.False(t, be.IsSystemicFlag())
	assert.NotEmpty(t, be.StackTrace)
	assert.Equal(t, "[registry] save failed: original error", be.Error())
}

func TestBatchErrorWithoutOriginal(t *testing.T) {
	be := exception.NewBatchError("executor", "claim failed", nil, false)
	assert.Equal(t, "[executor] claim failed", be.Error())
	assert.Nil(t, errors.Unwrap(be))
}

func TestBatchErrorUnwrap(t *testing.T) {
	be := exception.NewBatchError("executor", "load failed", errSentinel, false)
	assert.True(t, errors.Is(be, errSentinel))
}

func TestNewSystemicError(t *testing.T) {
	be := exception.NewSystemicError("certificate_issuer", "service down", nil)
	assert.True(t, be.IsSystemicFlag())
	assert.True(t, exception.IsSystemic(be))
}

func TestNewBatchErrorfExtractsTrailingError(t *testing.T) {
	be := exception.NewBatchErrorf("submitter", "event '%s' rejected", "evt-1", errSentinel)

	assert.Equal(t, "event 'evt-1' rejected", be.Message)
	assert.True(t, errors.Is(be, errSentinel))
	assert.False(t, be.IsSystemicFlag())
}

func TestNewBatchErrorfWithoutError(t *testing.T) {
	be := exception.NewBatchErrorf("submitter", "event ID is required")
	assert.Equal(t, "event ID is required", be.Message)
	assert.Nil(t, errors.Unwrap(be))
}

func TestIsBatchError(t *testing.T) {
	be := exception.NewBatchError("engine", "boom", nil, false)

	assert.True(t, exception.IsBatchError(be))
	// Also detected through wrapping.
	assert.True(t, exception.IsBatchError(fmt.Errorf("outer: %w", be)))
	assert.False(t, exception.IsBatchError(errors.New("plain")))
	assert.False(t, exception.IsBatchError(nil))
}

func TestIsSystemicFlagTakesPrecedence(t *testing.T) {
	// A non-systemic BatchError wrapping a transport failure stays
	// non-systemic: the flag wins over message matching.
	transport := errors.New("dial tcp: connection refused")
	be := exception.NewBatchError("issuer", "request failed", transport, false)

	assert.False(t, exception.IsSystemic(be))
	assert.True(t, exception.IsSystemic(transport))
}

func TestIsSystemicMessageHeuristics(t *testing.T) {
	assert.True(t, exception.IsSystemic(errors.New("lookup api.example.com: no such host")))
	assert.True(t, exception.IsSystemic(errors.New("503 service unavailable")))
	assert.False(t, exception.IsSystemic(errors.New("participant not found")))
	assert.False(t, exception.IsSystemic(nil))
}

func TestIsErrorOfTypeRegisteredSentinel(t *testing.T) {
	wrapped := fmt.Errorf("request aborted: %w", context.Canceled)
	assert.True(t, exception.IsErrorOfType(wrapped, "context.Canceled"))
	assert.True(t, exception.IsErrorTypeRegistered("context.DeadlineExceeded"))
}

func TestIsErrorOfTypeByMessageAndTypeName(t *testing.T) {
	be := exception.NewBatchError("engine", "boom", nil, false)

	assert.True(t, exception.IsErrorOfType(be, "exception.BatchError"))
	assert.True(t, exception.IsErrorOfType(errors.New("timeout waiting for lock"), "timeout"))
	assert.False(t, exception.IsErrorOfType(errors.New("other"), "timeout"))
	assert.False(t, exception.IsErrorOfType(nil, "timeout"))
}

func TestRegisterErrorTypePanics(t *testing.T) {
	assert.Panics(t, func() { exception.RegisterErrorType("", errSentinel) })
	assert.Panics(t, func() { exception.RegisterErrorType("some.Error", nil) })
}

func TestExtractErrorMessage(t *testing.T) {
	be := exception.NewBatchError("issuer", "certificate rejected", errors.New("400 bad request"), false)

	// BatchError yields the clean message, not the full chain.
	assert.Equal(t, "certificate rejected", exception.ExtractErrorMessage(be))
	assert.Equal(t, "plain failure", exception.ExtractErrorMessage(errors.New("plain failure")))
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
}

func TestStackTraceMentionsTestFunction(t *testing.T) {
	be := exception.NewBatchError("engine", "boom", nil, false)
	assert.True(t, strings.Contains(be.StackTrace, "TestStackTraceMentionsTestFunction"))
}
