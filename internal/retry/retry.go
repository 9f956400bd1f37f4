// Package retry wraps fallible oracle calls with capped exponential backoff.
// Only failures that classify as transient are retried; everything else
// propagates unchanged on first occurrence.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Transient is implemented by errors that are worth retrying, such as
// rate limits and server-side failures.
type Transient interface {
	Transient() bool
}

// IsTransient walks the error chain for a Transient carrier.
func IsTransient(err error) bool {
	var t Transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	return false
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Retrier executes units of work with backoff between attempts. It holds no
// shared state; a single Retrier is safe for concurrent use.
type Retrier struct {
	cfg   Config
	sleep func(context.Context, time.Duration) error
}

func New(cfg Config) *Retrier {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retrier{cfg: cfg, sleep: sleepContext}
}

// Do runs fn up to MaxAttempts times. Between attempt n and n+1 it sleeps
// min(BaseDelay * 2^(n-1), MaxDelay). The last error is returned unchanged
// so callers can inspect it with errors.Is/As.
func (r *Retrier) Do(ctx context.Context, op string, fn func() error) error {
	var err error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if !IsTransient(err) {
			return err
		}

		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.Delay(attempt)
		log.Warn().
			Str("op", op).
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("transient failure, retrying")

		if serr := r.sleep(ctx, delay); serr != nil {
			return serr
		}
	}

	return err
}

// Delay returns the pause that follows attempt n (1-based).
func (r *Retrier) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := r.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if r.cfg.MaxDelay > 0 && delay >= r.cfg.MaxDelay {
			return r.cfg.MaxDelay
		}
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
