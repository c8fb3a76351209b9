package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy — one bounded exponential-backoff policy, shared by gateway
// I/O during a tick and by close-order submission.
type RetryPolicy struct {
	MaxAttempts uint64
	Base        time.Duration
}

// Do runs op until it succeeds, the attempt budget is spent, or ctx is
// cancelled.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	if p.Base > 0 {
		bo.InitialInterval = p.Base
	}

	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx))
}
