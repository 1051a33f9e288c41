// Package poller polls the backend's eventually-consistent result store with
// bounded exponential backoff.
//
// A Poller runs one poll at a time as an explicit state machine:
//
//	Idle -> Fetching -> Succeeded
//	                 -> Backoff -> Fetching   (NotFound, attempts left)
//	                 -> Failed                (NotFound exhausted, or any other error)
//	Fetching|Backoff -> Cancelled             (Cancel, Start, or ctx done)
//
// Every poll carries a generation number. Once a poll is cancelled or
// superseded its generation is stale, and its goroutine can no longer record
// transitions or deliver callbacks.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/harrison/talentmap/internal/backend"
	"github.com/harrison/talentmap/internal/logger"
)

// Sleeper waits for d or until ctx is done, returning ctx.Err() in that case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Observer is notified of every recorded transition.
type Observer func(PollState)

// Option configures a Poller.
type Option func(*Poller)

// WithSleeper replaces the real-time backoff wait.
func WithSleeper(s Sleeper) Option {
	return func(p *Poller) {
		p.sleep = s
	}
}

// WithObserver registers a transition observer. It runs on the poll
// goroutine outside the poller's lock.
func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observe = o
	}
}

// WithLogger sets the logger. NotFound responses are logged at debug level;
// errors are only logged once the poll fails.
func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		p.log = l
	}
}

// Poller polls one result id at a time.
type Poller struct {
	fetcher backend.Fetcher
	cfg     Config
	sleep   Sleeper
	observe Observer
	log     logger.Logger

	mu     sync.Mutex
	state  PollState
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle Poller. Zero Config fields take DefaultConfig values.
func New(fetcher backend.Fetcher, cfg Config, opts ...Option) *Poller {
	cfg = cfg.withDefaults()
	p := &Poller{
		fetcher: fetcher,
		cfg:     cfg,
		sleep:   sleepContext,
		log:     logger.NewNoOpLogger(),
		state:   PollState{Phase: Idle, MaxAttempts: cfg.MaxAttempts},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective configuration.
func (p *Poller) Config() Config {
	return p.cfg
}

// State returns a snapshot of the current poll.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start polls id in the background, cancelling any poll already running.
// Exactly one of onSuccess or onFailure is called unless the poll is
// cancelled, in which case neither is. Either callback may be nil.
func (p *Poller) Start(id string, onSuccess func(*backend.Result), onFailure func(error)) {
	ctx, gen, done := p.begin(context.Background(), id)

	go func() {
		defer close(done)
		result, err := p.poll(ctx, gen, id)
		// The poll is terminal by now, so a later Cancel is a no-op; only a
		// newer Start drops the callback.
		if !p.current(gen) {
			return
		}
		if err == nil {
			if onSuccess != nil {
				onSuccess(result)
			}
			return
		}
		if onFailure != nil {
			onFailure(err)
		}
	}()
}

// Run polls id on the calling goroutine, cancelling any poll already
// running. It returns ErrCancelled if the poll is cancelled or ctx ends.
func (p *Poller) Run(ctx context.Context, id string) (*backend.Result, error) {
	pollCtx, gen, done := p.begin(ctx, id)
	defer close(done)
	return p.poll(pollCtx, gen, id)
}

// Cancel stops the active poll. It is a no-op when no poll is in flight.
func (p *Poller) Cancel() {
	p.mu.Lock()
	snapshot, ok := p.cancelLocked()
	p.mu.Unlock()

	if ok {
		p.notify(snapshot)
	}
}

// Wait blocks until the most recently started poll goroutine has returned.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// begin supersedes any running poll and resets state for id.
func (p *Poller) begin(parent context.Context, id string) (context.Context, uint64, chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	p.mu.Lock()
	prev, cancelled := p.cancelLocked()
	p.gen++
	gen := p.gen
	p.cancel = cancel
	p.done = done
	p.state = PollState{Phase: Idle, ID: id, MaxAttempts: p.cfg.MaxAttempts}
	snapshot := p.state
	p.mu.Unlock()

	if cancelled {
		p.notify(prev)
	}
	p.notify(snapshot)
	return ctx, gen, done
}

// cancelLocked moves an in-flight poll to Cancelled and invalidates its
// generation. Caller holds p.mu.
func (p *Poller) cancelLocked() (PollState, bool) {
	if p.cancel == nil {
		return PollState{}, false
	}
	p.cancel()
	p.cancel = nil
	p.gen++

	if p.state.Phase.Terminal() {
		return PollState{}, false
	}
	p.state.Phase = Cancelled
	p.state.Cancelled = true
	return p.state, true
}

// current reports whether gen is still the active poll.
func (p *Poller) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.gen
}

// transition applies fn if gen is still active and reports whether it did.
func (p *Poller) transition(gen uint64, fn func(*PollState)) bool {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return false
	}
	fn(&p.state)
	snapshot := p.state
	if snapshot.Phase.Terminal() && p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.notify(snapshot)
	return true
}

// abandon records a cancellation that came from the context rather than
// from Cancel, so Run's caller sees Cancelled in State.
func (p *Poller) abandon(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	snapshot, ok := p.cancelLocked()
	p.mu.Unlock()
	if ok {
		p.notify(snapshot)
	}
}

func (p *Poller) notify(s PollState) {
	if p.observe != nil {
		p.observe(s)
	}
}

func (p *Poller) poll(ctx context.Context, gen uint64, id string) (*backend.Result, error) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil || !p.transition(gen, func(s *PollState) {
			s.Phase = Fetching
			s.Attempt = attempt
			s.Delay = 0
		}) {
			p.abandon(gen)
			return nil, ErrCancelled
		}

		result, err := p.fetcher.ResultByID(ctx, id)
		if ctx.Err() != nil {
			p.abandon(gen)
			return nil, ErrCancelled
		}

		if err == nil {
			if !p.transition(gen, func(s *PollState) { s.Phase = Succeeded; s.LastError = nil }) {
				return nil, ErrCancelled
			}
			logger.Infof(p.log, "result %s ready after %d attempt(s)", id, attempt+1)
			return result, nil
		}

		if !backend.IsNotFound(err) {
			if !p.transition(gen, func(s *PollState) { s.Phase = Failed; s.LastError = err }) {
				return nil, ErrCancelled
			}
			logger.Errorf(p.log, "polling result %s failed: %v", id, err)
			return nil, err
		}

		logger.Debugf(p.log, "result %s not ready (attempt %d/%d)", id, attempt+1, p.cfg.MaxAttempts)

		if attempt+1 >= p.cfg.MaxAttempts {
			exhausted := &ExhaustedRetriesError{ID: id, Attempts: attempt + 1, Last: err}
			if !p.transition(gen, func(s *PollState) { s.Phase = Failed; s.LastError = exhausted }) {
				return nil, ErrCancelled
			}
			logger.Errorf(p.log, "%v", exhausted)
			return nil, exhausted
		}

		delay := p.cfg.Delay(attempt)
		if !p.transition(gen, func(s *PollState) {
			s.Phase = Backoff
			s.Delay = delay
			s.LastError = err
		}) {
			return nil, ErrCancelled
		}

		if err := p.sleep(ctx, delay); err != nil {
			p.abandon(gen)
			return nil, ErrCancelled
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
