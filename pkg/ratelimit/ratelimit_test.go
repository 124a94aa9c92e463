package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUnderLimit(t *testing.T) {
	l := New(3, time.Minute)

	assert.True(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-2"))
}

func TestLimiterWindowSlides(t *testing.T) {
	l := New(2, time.Minute)
	current := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("user-1"))
	current = current.Add(30 * time.Second)
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))

	// The first call falls outside the window, freeing one slot.
	current = current.Add(31 * time.Second)
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
}
