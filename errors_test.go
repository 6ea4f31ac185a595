package flakescan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	base := fmt.Errorf("bad config")
	err := NewRuntimeError(base)

	assert.True(t, IsRuntimeError(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "bad config")

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsRuntimeError(wrapped))

	assert.False(t, IsRuntimeError(base))
	assert.False(t, IsRuntimeError(nil))
}

func TestUnreliableTestsError(t *testing.T) {
	err := NewUnreliableTestsError(2, 1)

	assert.True(t, IsUnreliableTestsError(err))
	assert.Contains(t, err.Error(), "2 flaky")
	assert.Contains(t, err.Error(), "1 failing")

	assert.False(t, IsUnreliableTestsError(fmt.Errorf("other")))
	assert.False(t, IsRuntimeError(err))
}
