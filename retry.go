package readinglog

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/zombar/readinglog/llm"
)

// retryTransient runs op, retrying transient failures up to extraAttempts
// additional times with capped exponential backoff. Non-transient failures
// and context cancellation stop retrying immediately.
func retryTransient(ctx context.Context, extraAttempts int, initial time.Duration, op func() error) error {
	if extraAttempts < 0 {
		extraAttempts = 0
	}

	expo := backoff.NewExponentialBackOff()
	if initial > 0 {
		expo.InitialInterval = initial
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(extraAttempts)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func retryable(err error) bool {
	return IsTransient(err) || llm.IsTransient(err)
}
