package resilient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ReconnectPolicy configures the exponential-backoff-with-jitter schedule a
// ResilientClient follows when re-establishing a dropped connection
// (spec.md §4.6).
type ReconnectPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration // 0 means retry forever
}

// DefaultReconnectPolicy matches the teacher's streaming reconnect defaults,
// widened slightly for a device link that may sit idle for minutes between
// sessions.
var DefaultReconnectPolicy = ReconnectPolicy{
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     30 * time.Second,
	Multiplier:      2,
	MaxElapsedTime:  0,
}

// newBackOff builds a cenkalti/backoff/v5 exponential policy from a
// ReconnectPolicy.
func (p ReconnectPolicy) newBackOff() backoff.BackOff {
	return backoff.NewExponentialBackOff(func(b *backoff.ExponentialBackOff) {
		if p.InitialInterval > 0 {
			b.InitialInterval = p.InitialInterval
		}
		if p.MaxInterval > 0 {
			b.MaxInterval = p.MaxInterval
		}
		if p.Multiplier > 0 {
			b.Multiplier = p.Multiplier
		}
	})
}

// retryReconnect runs fn with exponential backoff until it succeeds, ctx is
// canceled, or the policy's MaxElapsedTime (if any) elapses. fn closes over
// ctx itself (cenkalti/backoff/v5's Operation takes no arguments); it is the
// sole path in this package that waits between connection attempts —
// everything else about reconnection is a single attempt.
func retryReconnect(ctx context.Context, policy ReconnectPolicy, fn func() (struct{}, error)) error {
	opts := []backoff.RetryOption{backoff.WithBackOff(policy.newBackOff())}
	if policy.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(policy.MaxElapsedTime))
	}
	_, err := backoff.Retry(ctx, fn, opts...)
	return err
}
