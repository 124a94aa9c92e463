package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrStorageUnavailable.Code, "ping database")

	assert.Equal(t, "ping database: connection refused", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(ErrInvalidDate.Code, "cannot parse")
	assert.True(t, Is(err, ErrInvalidDate))
	assert.False(t, Is(err, ErrFutureDate))
	assert.False(t, Is(stderrors.New("plain"), ErrInvalidDate))
	assert.False(t, Is(nil, ErrInvalidDate))
}

func TestIsSeesThroughWrapping(t *testing.T) {
	inner := New(ErrDeliveryFailed.Code, "status 500")
	outer := fmt.Errorf("expiry check: %w", inner)
	assert.True(t, Is(outer, ErrDeliveryFailed))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := New(ErrRateLimited.Code, "slow down")
	assert.Same(t, typed, FromError(typed))

	plain := FromError(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)
}
