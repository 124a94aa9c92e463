package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoZeroPolicySingleAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), Policy{}, nil, "op", func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoSucceedsEventually(t *testing.T) {
	var calls int
	err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, nil, "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var calls int
	wantErr := errors.New("permanent")
	err := Do(context.Background(), Policy{Attempts: 4, Delay: time.Millisecond}, nil, "op", func(ctx context.Context) error {
		calls++
		return wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 4, calls)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, nil, "op", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("failing")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
