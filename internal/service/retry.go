package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/venably/venably/internal/domain"
)

// RetryPolicy bounds how often a conflicting write cycle is retried after a
// serialization failure or constraint race. Each attempt re-runs the full
// check-then-write transaction, so retries never skip the conflict check.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries twice after the initial attempt.
var DefaultRetryPolicy = RetryPolicy{
	MaxTries:        3,
	InitialInterval: 25 * time.Millisecond,
}

func (p RetryPolicy) orDefault() RetryPolicy {
	if p.MaxTries == 0 {
		return DefaultRetryPolicy
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	return p
}

// retryWrite runs op until it succeeds, fails permanently, or the retry
// budget is spent. Only domain.ErrRetryable triggers a retry; validation
// errors and conflict rejections are final. Returns the number of retries
// performed alongside the result.
func retryWrite[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, int, error) {
	policy = policy.orDefault()

	attempts := 0
	wrapped := func() (T, error) {
		attempts++
		v, err := op()
		if err != nil && !errors.Is(err, domain.ErrRetryable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.InitialInterval

	v, err := backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(policy.MaxTries),
	)
	return v, attempts - 1, err
}
