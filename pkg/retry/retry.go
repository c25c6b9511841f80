// Package retry is the single home for remote-write backoff. Every mutation
// that touches the cloud goes through a Policy rather than reimplementing
// delays inline.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded exponential backoff: the operation is invoked up
// to MaxAttempts times, waiting InitialInterval before the first retry and
// doubling the wait after each failure.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
}

// Default mirrors the write policy used for all remote mutations:
// 3 attempts total, delays of 500ms then 1s between them.
func Default() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
	}
}

// Do runs op under the policy. It returns nil as soon as one attempt
// succeeds; once the attempt budget is exhausted it returns the last failure.
// A cancelled context stops the retry loop between attempts.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	return backoff.Retry(op, backoff.WithMaxRetries(backoff.WithContext(b, ctx), attempts-1))
}

// Permanent marks an error as non-retryable: Do gives up immediately and
// returns the wrapped error.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
