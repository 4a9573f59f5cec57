package handlers

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds how often a unit of work is attempted and how long to
// wait between attempts. The wait is fixed, not exponential.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Logger      *logrus.Entry
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 2 * time.Second}
}

// WithRetry runs op until it succeeds, returns an error of a non-retryable
// Kind, or MaxAttempts calls have been made. The last error is returned
// unchanged.
//
// op must be the whole unit of work: anything that depends on ledger state
// (source account sequence, fee) is re-read inside it on every attempt.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(policy.Backoff)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	run := func() (T, error) {
		attempt++
		res, err := op()
		if err != nil && !KindOf(err).Retryable() {
			return res, backoff.Permanent(err)
		}
		return res, err
	}
	notify := func(err error, wait time.Duration) {
		if policy.Logger != nil {
			policy.Logger.WithError(err).Warnf("Attempt %d/%d failed, retrying in %s", attempt, attempts, wait)
		}
	}
	return backoff.RetryNotifyWithData(run, b, notify)
}
