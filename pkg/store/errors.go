package store

import (
	"context"
	"errors"
	"time"
)

// Retry schedule for network backends. The delay doubles after every failed
// attempt.
const retryAttempts = 3

var retryDelay = time.Second

// transientError marks a backend failure that may succeed when repeated,
// such as a dropped connection or a server-side timeout.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Retryable marks err as transient. It returns nil for a nil error.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether err, or any error it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or has been tried retryAttempts times. Cancelling ctx between
// attempts returns ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
