package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: 10 * time.Millisecond}

	t.Run("Always failing operation is attempted MaxAttempts times", func(t *testing.T) {
		calls := 0
		var last error
		_, err := WithRetry(context.Background(), policy, func() (string, error) {
			calls++
			last = errors.New("ledger busy")
			return "", last
		})
		assert.Equal(t, 3, calls)
		assert.Same(t, last, err)
	})

	t.Run("Succeeds after transient failures", func(t *testing.T) {
		calls := 0
		res, err := WithRetry(context.Background(), policy, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, newError(TransientLedgerFailure, "test", "busy", nil)
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, res)
		assert.Equal(t, 3, calls)
	})

	t.Run("Non-retryable kinds stop immediately", func(t *testing.T) {
		for _, kind := range []Kind{InvalidArgument, ConfigurationError, AccountNotFound, MissingTrustline, LedgerRejection} {
			calls := 0
			orig := newError(kind, "test", "nope", nil)
			_, err := WithRetry(context.Background(), policy, func() (struct{}, error) {
				calls++
				return struct{}{}, orig
			})
			assert.Equal(t, 1, calls, kind.String())
			assert.Same(t, orig, err, kind.String())
		}
	})

	t.Run("Waits between attempts", func(t *testing.T) {
		start := time.Now()
		_, _ = WithRetry(context.Background(), RetryPolicy{MaxAttempts: 3, Backoff: 20 * time.Millisecond}, func() (int, error) {
			return 0, errors.New("fail")
		})
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("Zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, err := WithRetry(context.Background(), RetryPolicy{Logger: logrus.NewEntry(logrus.New())}, func() (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("Cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := WithRetry(ctx, RetryPolicy{MaxAttempts: 5, Backoff: time.Second}, func() (int, error) {
			calls++
			cancel()
			return 0, errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
