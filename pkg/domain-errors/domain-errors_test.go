package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "reference request not found")
	require.Error(t, err)
	assert.Equal(t, "reference request not found", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInternal))
}

func TestWrap_PreservesOriginalCode(t *testing.T) {
	inner := New(CodeRateLimited, "maximum send attempts reached")
	wrapped := Wrap(inner, CodeInternal, "resend failed")

	assert.True(t, HasCode(wrapped, CodeRateLimited), "wrapping must not mask the original domain code")
	assert.Equal(t, "resend failed", wrapped.Error())
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrap_NonDomainError(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	wrapped := Wrap(inner, CodeInternal, "store failure")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(CodeInvalidState, "reference already resolved")
	b := New(CodeInvalidState, "different message")
	assert.True(t, errors.Is(a, b))

	c := New(CodeExpired, "reference expired")
	assert.False(t, errors.Is(a, c))
}

func TestError_MessageFallsBackToCode(t *testing.T) {
	err := &Error{Code: CodeConflict}
	assert.Equal(t, string(CodeConflict), err.Error())
}
