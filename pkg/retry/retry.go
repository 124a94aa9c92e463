package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy describes how an I/O call is retried. The zero policy performs a
// single attempt with no retries, so wrapping a call with an unset policy is
// a no-op.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn up to p.Attempts times, sleeping p.Delay*(attempt) between
// failures. The delay grows linearly with the attempt number.
func Do(ctx context.Context, p Policy, logger *zap.Logger, name string, fn func(context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		logger.Warn("operation failed, retrying",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(p.Delay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	logger.Error("operation failed after all attempts",
		zap.String("operation", name),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
	return err
}
