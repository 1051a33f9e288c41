package poller

import (
	"errors"
	"fmt"
	"time"
)

// Phase is a poller state.
type Phase int

const (
	Idle Phase = iota
	Fetching
	Backoff
	Succeeded
	Failed
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Backoff:
		return "backoff"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transitions follow p.
func (p Phase) Terminal() bool {
	return p == Succeeded || p == Failed || p == Cancelled
}

// PollState is a snapshot of the poller. Attempt is 0-based.
type PollState struct {
	Phase       Phase
	ID          string
	Attempt     int
	MaxAttempts int
	Delay       time.Duration
	LastError   error
	Cancelled   bool
}

// Config bounds polling.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig is six attempts with delays of 1s, 2s, 4s, 8s, then 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 6,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// Delay is the wait after a NotFound on the given 0-based attempt:
// min(BaseDelay*2^attempt, MaxDelay).
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 62 {
		return c.MaxDelay
	}
	d := c.BaseDelay << uint(attempt)
	if d <= 0 || d > c.MaxDelay || d>>uint(attempt) != c.BaseDelay {
		return c.MaxDelay
	}
	return d
}

// ErrCancelled is returned by Run when the poll is cancelled.
var ErrCancelled = errors.New("poller: cancelled")

// ExhaustedRetriesError means every attempt returned NotFound.
type ExhaustedRetriesError struct {
	ID       string
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("result %s not available after %d attempts", e.ID, e.Attempts)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Last
}

// IsExhausted reports whether err is an *ExhaustedRetriesError.
func IsExhausted(err error) bool {
	var ex *ExhaustedRetriesError
	return errors.As(err, &ex)
}
