package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrRetriesExhausted is returned by Retry when every attempt failed, or when
// the caller asked for zero attempts.
var ErrRetriesExhausted = errors.New("retries were exhausted")

// Retry calls fn up to attempts times, sleeping interval between attempts,
// and returns the first successful result. Every error from fn is considered
// retryable; the last one is wrapped into the returned error once the budget
// is spent. A cancelled ctx also ends the loop.
//
// It is used at startup to establish the storage connection, where a short
// window of unavailability (e.g. the database container still coming up) is
// expected and anything longer is fatal for the process.
func Retry[T any](ctx context.Context, attempts uint64, interval time.Duration, fn func() (T, error)) (T, error) {
	var zero T

	if attempts == 0 {
		return zero, ErrRetriesExhausted
	}

	backoff := retry.WithMaxRetries(attempts-1, retry.NewConstant(interval))

	var out T
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := fn()
		if err != nil {
			return retry.RetryableError(err)
		}
		out = v
		return nil
	})
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}

	return out, nil
}
