package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/talentmap/internal/backend"
)

// scriptedFetcher returns NotFound for the first notFound calls, then either
// finalErr or a result.
type scriptedFetcher struct {
	mu       sync.Mutex
	calls    int
	notFound int
	finalErr error
}

func (f *scriptedFetcher) ResultByID(_ context.Context, id string) (*backend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.notFound < 0 || f.calls <= f.notFound {
		return nil, &backend.NotFoundError{ID: id}
	}
	if f.finalErr != nil {
		return nil, f.finalErr
	}
	return &backend.Result{ID: id, Status: "completed"}, nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeClock records requested delays and returns immediately.
type fakeClock struct {
	mu     sync.Mutex
	delays []time.Duration
	hook   func(n int)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	n := len(c.delays)
	hook := c.hook
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (c *fakeClock) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.delays {
		total += d
	}
	return total
}

func TestConfig_Delay(t *testing.T) {
	cfg := DefaultConfig()
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for attempt, d := range want {
		assert.Equal(t, d, cfg.Delay(attempt), "attempt %d", attempt)
	}
	assert.Equal(t, cfg.MaxDelay, cfg.Delay(200), "huge attempts must not overflow")
}

func TestConfig_Defaults(t *testing.T) {
	p := New(&scriptedFetcher{}, Config{})
	assert.Equal(t, DefaultConfig(), p.Config())

	p = New(&scriptedFetcher{}, Config{MaxAttempts: 2, BaseDelay: time.Minute, MaxDelay: time.Second})
	assert.Equal(t, time.Minute, p.Config().MaxDelay, "cap is never below the base delay")
}

func TestRun_SucceedsAfterFourNotFounds(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: 4}
	clock := &fakeClock{}
	p := New(fetcher, DefaultConfig(), WithSleeper(clock.Sleep))

	result, err := p.Run(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", result.ID)

	state := p.State()
	assert.Equal(t, Succeeded, state.Phase)
	assert.Equal(t, 4, state.Attempt)
	assert.Equal(t, 5, fetcher.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, clock.delays)
	assert.Equal(t, 15*time.Second, clock.Total())
}

func TestRun_ExhaustsAfterMaxAttempts(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: -1}
	clock := &fakeClock{}
	p := New(fetcher, DefaultConfig(), WithSleeper(clock.Sleep))

	_, err := p.Run(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, IsExhausted(err))

	var exhausted *ExhaustedRetriesError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 6, exhausted.Attempts)
	assert.True(t, backend.IsNotFound(err), "last NotFound is wrapped")

	assert.Equal(t, 6, fetcher.Calls())
	assert.Len(t, clock.delays, 5)
	assert.Equal(t, 25*time.Second, clock.Total())

	state := p.State()
	assert.Equal(t, Failed, state.Phase)
	assert.Equal(t, 5, state.Attempt)
	assert.ErrorIs(t, state.LastError, err)
}

func TestRun_OtherErrorFailsImmediately(t *testing.T) {
	boom := &backend.TransportError{StatusCode: 500, Message: "boom"}
	fetcher := &scriptedFetcher{notFound: 1, finalErr: boom}
	clock := &fakeClock{}
	p := New(fetcher, DefaultConfig(), WithSleeper(clock.Sleep))

	_, err := p.Run(context.Background(), "job-1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsExhausted(err))
	assert.Equal(t, 2, fetcher.Calls())
	assert.Len(t, clock.delays, 1)
	assert.Equal(t, Failed, p.State().Phase)
}

func TestRun_ContextCancelled(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: -1}
	ctx, cancel := context.WithCancel(context.Background())
	clock := &fakeClock{hook: func(int) { cancel() }}
	p := New(fetcher, DefaultConfig(), WithSleeper(clock.Sleep))

	_, err := p.Run(ctx, "job-1")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 1, fetcher.Calls())
	assert.Equal(t, Cancelled, p.State().Phase)
	assert.True(t, p.State().Cancelled)
}

func TestStart_CallsOnSuccess(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: 2}
	clock := &fakeClock{}
	p := New(fetcher, DefaultConfig(), WithSleeper(clock.Sleep))

	var got *backend.Result
	var failed error
	p.Start("job-9", func(r *backend.Result) { got = r }, func(err error) { failed = err })
	p.Wait()

	require.NotNil(t, got)
	assert.Equal(t, "job-9", got.ID)
	assert.NoError(t, failed)
	assert.Equal(t, Succeeded, p.State().Phase)
}

func TestCancel_AfterCompletionIsNoOp(t *testing.T) {
	fetcher := &scriptedFetcher{}
	var mu sync.Mutex
	var phases []Phase
	p := New(fetcher, DefaultConfig(),
		WithSleeper((&fakeClock{}).Sleep),
		WithObserver(func(s PollState) {
			mu.Lock()
			phases = append(phases, s.Phase)
			mu.Unlock()
		}),
	)

	var got *backend.Result
	p.Start("job-3", func(r *backend.Result) {
		p.Cancel()
		got = r
	}, nil)
	p.Wait()
	p.Cancel()

	require.NotNil(t, got)
	assert.Equal(t, Succeeded, p.State().Phase)
	assert.False(t, p.State().Cancelled)
	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, phases, Cancelled)
}

func TestStart_CallsOnFailure(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: -1}
	p := New(fetcher, Config{MaxAttempts: 3}, WithSleeper((&fakeClock{}).Sleep))

	var failed error
	successCalled := false
	p.Start("job-9", func(*backend.Result) { successCalled = true }, func(err error) { failed = err })
	p.Wait()

	assert.False(t, successCalled)
	var exhausted *ExhaustedRetriesError
	require.ErrorAs(t, failed, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
}

func TestCancel_MidBackoffStopsEverything(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: -1}

	var p *Poller
	clock := &fakeClock{hook: func(n int) {
		if n == 2 {
			p.Cancel()
		}
	}}

	var (
		mu     sync.Mutex
		phases []Phase
	)
	p = New(fetcher, DefaultConfig(),
		WithSleeper(clock.Sleep),
		WithObserver(func(s PollState) {
			mu.Lock()
			phases = append(phases, s.Phase)
			mu.Unlock()
		}),
	)

	callbacks := 0
	p.Start("job-1", func(*backend.Result) { callbacks++ }, func(error) { callbacks++ })
	p.Wait()

	assert.Equal(t, 0, callbacks, "cancelled poll must not invoke callbacks")
	assert.Equal(t, 2, fetcher.Calls(), "no fetch after cancellation")
	assert.Equal(t, Cancelled, p.State().Phase)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{Idle, Fetching, Backoff, Fetching, Backoff, Cancelled}, phases)

	p.Cancel()
	assert.Equal(t, Cancelled, p.State().Phase, "second cancel is a no-op")
}

func TestStart_NewPollCancelsOld(t *testing.T) {
	fetcher := &scriptedFetcher{notFound: 1}
	entered := make(chan struct{}, 1)

	sleeper := func(ctx context.Context, d time.Duration) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	p := New(fetcher, DefaultConfig(), WithSleeper(sleeper))

	oldCalled := make(chan struct{}, 2)
	p.Start("old", func(*backend.Result) { oldCalled <- struct{}{} }, func(error) { oldCalled <- struct{}{} })
	<-entered

	var got *backend.Result
	p.Start("new", func(r *backend.Result) { got = r }, nil)
	p.Wait()

	require.NotNil(t, got)
	assert.Equal(t, "new", got.ID)
	assert.Equal(t, "new", p.State().ID)
	assert.Equal(t, Succeeded, p.State().Phase)
	assert.Len(t, oldCalled, 0, "superseded poll must stay silent")
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "backoff", Backoff.String())
	assert.True(t, Cancelled.Terminal())
	assert.False(t, Fetching.Terminal())
	assert.Equal(t, "phase(42)", Phase(42).String())
}

func TestExhaustedRetriesError(t *testing.T) {
	err := &ExhaustedRetriesError{ID: "j", Attempts: 6, Last: errors.New("nf")}
	assert.Equal(t, "result j not available after 6 attempts", err.Error())
}
