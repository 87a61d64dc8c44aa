package utils

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds how often, and how far apart, an operation is attempted.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy retries five times, five seconds apart.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	Delay:       5 * time.Second,
}

// WithRetry calls fn until it succeeds or the policy's attempts are used up,
// sleeping Delay between attempts. The last error is returned on exhaustion.
// A cancelled ctx stops the loop early with ctx.Err().
func WithRetry(ctx context.Context, policy RetryPolicy, logger logrus.FieldLogger, what string, fn func(context.Context) error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for i := 1; i <= maxAttempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == maxAttempts {
			break
		}

		logger.WithFields(logrus.Fields{
			"attempt": i,
			"of":      maxAttempts,
		}).Warnf("%s failed: %s; retrying in %s", what, err, policy.Delay)

		if policy.Delay <= 0 {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	logger.Errorf("%s failed after %d attempts", what, maxAttempts)
	return err
}
