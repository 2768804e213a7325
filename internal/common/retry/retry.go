// Package retry wraps collaborator calls with a bounded timeout and retry
// policy. Transient store failures are retried with backoff at the call site;
// business-rule errors pass through untouched.
package retry

import (
	"context"
	stderrors "errors"
	"time"

	"attendly/internal/common/errors"
)

// Policy bounds a retried store call.
type Policy struct {
	Attempts    int
	Backoff     time.Duration
	CallTimeout time.Duration
}

// DefaultPolicy returns the store-call policy used across the engine.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:    3,
		Backoff:     200 * time.Millisecond,
		CallTimeout: 5 * time.Second,
	}
}

// Do runs fn under the policy's per-call timeout, retrying retryable failures
// up to Attempts times. AppErrors that are not retryable are returned
// immediately.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	backoff := p.Backoff

	for attempt := 0; attempt < p.Attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.CallTimeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return errors.StoreUnavailable("store call abandoned", ctx.Err().Error())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if appErr, ok := lastErr.(*errors.AppError); ok {
		return appErr
	}
	return errors.StoreUnavailable("store call failed after retries", lastErr.Error())
}

func retryable(err error) bool {
	if errors.IsRetryable(err) {
		return true
	}
	// Deadline expiry on the per-call context counts as transient.
	return stderrors.Is(err, context.DeadlineExceeded)
}
