package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesSentinelByCode(t *testing.T) {
	err := EmptySample("mean direction")
	assert.True(t, stderrors.Is(err, ErrEmptySample))
	assert.False(t, stderrors.Is(err, ErrDegenerateGeometry))
	assert.Contains(t, err.Error(), "mean direction")
}

func TestWrapKeepsCode(t *testing.T) {
	inner := InvalidConfiguration("sector size %v must be positive", 0.0)
	wrapped := Wrap(inner, "configure geometry")

	assert.True(t, stderrors.Is(wrapped, ErrInvalidConfiguration))
	assert.Equal(t, CodeInvalidConfiguration, CodeOf(wrapped))
	assert.Contains(t, wrapped.Error(), "configure geometry")
}

func TestWrapThroughFmt(t *testing.T) {
	err := fmt.Errorf("load dataset: %w", NotFound("dataset", "abc"))
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(stderrors.New("boom")))
	assert.Equal(t, CodeInternal, CodeOf(Wrap(stderrors.New("boom"), "ctx")))
	assert.Nil(t, Wrap(nil, "ctx"))
}
