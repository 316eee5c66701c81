package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend marks failures of the remote cache store. Callers that only
// want a best-effort cache can test for it with errors.Is and carry on
// with a fresh build.
var ErrBackend = errors.New("cache backend unavailable")

// transient marks an error worth another attempt, such as a dropped
// connection to redis.
type transient struct{ err error }

func (t *transient) Error() string { return t.err.Error() }
func (t *transient) Unwrap() error { return t.err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transient{err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var t *transient
	return errors.As(err, &t)
}

// retryDelay is the pause before the second attempt. Each later pause
// doubles it.
var retryDelay = 100 * time.Millisecond

const retryAttempts = 3

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// with [Retryable], or has been tried three times. Waiting between attempts
// is aborted when ctx ends.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt, wait := 1, retryDelay; ; attempt, wait = attempt+1, wait*2 {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
