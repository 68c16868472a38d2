package transport

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// Policy controls reconnect attempts.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsed bounds the whole retry sequence. Zero retries until ctx ends.
	MaxElapsed time.Duration
}

// DefaultPolicy matches the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{InitialInterval: 250 * time.Millisecond, MaxInterval: 5 * time.Second, MaxElapsed: 30 * time.Second}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = p.MaxElapsed
	return backoff.WithContext(b, ctx)
}

// DialFunc opens one connection.
type DialFunc func(ctx context.Context) (Conn, error)

// Redial calls dial until it succeeds, the policy gives up or ctx ends.
// notify is called after every failed attempt with the delay before the next
// one.
func Redial(ctx context.Context, dial DialFunc, p Policy, notify func(attempt int, err error, wait time.Duration)) (Conn, error) {
	var conn Conn
	attempt := 0
	op := func() error {
		attempt++
		c, err := dial(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	var n backoff.Notify
	if notify != nil {
		n = func(err error, wait time.Duration) { notify(attempt, err, wait) }
	}
	if err := backoff.RetryNotify(op, p.backOff(ctx), n); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}
