package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/fitsync/internal/client/api"
	"github.com/iudanet/fitsync/internal/models"
)

type runnerFunc func(ctx context.Context, ownerID string) (*PassResult, error)

func (f runnerFunc) Run(ctx context.Context, ownerID string) (*PassResult, error) {
	return f(ctx, ownerID)
}

type fixedPending int

func (p fixedPending) Len(context.Context) (int, error) { return int(p), nil }

type fixedCursor models.SyncCursor

func (c fixedCursor) GetCursor(context.Context) (models.SyncCursor, error) {
	return models.SyncCursor(c), nil
}

func newTestScheduler(runner passRunner) *Scheduler {
	opts := SchedulerOptions{
		Interval:    time.Hour,
		BackoffBase: 10 * time.Millisecond,
		BackoffMax:  40 * time.Millisecond,
	}
	return NewScheduler(runner, fixedPending(0), fixedCursor{}, testOwner, opts, testLogger())
}

func okRunner() runnerFunc {
	return func(ctx context.Context, ownerID string) (*PassResult, error) {
		return &PassResult{Trace: fullTrace}, nil
	}
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(okRunner(), fixedPending(0), fixedCursor{}, testOwner, SchedulerOptions{}, testLogger())

	assert.Equal(t, DefaultInterval, s.opts.Interval)
	assert.Equal(t, DefaultBackoffBase, s.opts.BackoffBase)
	assert.Equal(t, DefaultBackoffMax, s.opts.BackoffMax)
	assert.Equal(t, StatusIdle, s.Status(context.Background()).State)
}

func TestScheduler_Status(t *testing.T) {
	success := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := NewScheduler(okRunner(), fixedPending(3), fixedCursor{LastSuccessAt: success}, testOwner, SchedulerOptions{}, testLogger())

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	st := s.Status(context.Background())
	assert.Equal(t, StatusIdle, st.State)
	assert.Equal(t, 3, st.Pending)
	assert.Equal(t, success, st.LastSuccessAt)
	assert.Empty(t, st.LastError)
	assert.False(t, st.Offline)
}

func TestScheduler_RunOnce_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		res       *PassResult
		err       error
		wantState string
		wantError string
		wantRetry bool
		offline   bool
	}{
		{
			name:      "success",
			res:       &PassResult{},
			wantState: StatusIdle,
		},
		{
			name:      "disconnected",
			res:       &PassResult{Disconnected: true, ProbeError: "timeout after 5s"},
			wantState: StatusIdle,
			wantError: "timeout after 5s",
			wantRetry: true,
			offline:   true,
		},
		{
			name:      "transport error",
			res:       &PassResult{},
			err:       &clientapi.TransportError{Op: "write", StatusCode: 502, Err: errors.New("bad gateway")},
			wantState: StatusError,
			wantError: "bad gateway",
			wantRetry: true,
		},
		{
			name:      "cursor inconsistency",
			res:       &PassResult{},
			err:       &CursorInconsistencyError{LastPushedSeq: 9, Head: 3, ResetTo: 2},
			wantState: StatusError,
			wantError: "cursor inconsistency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(runnerFunc(func(ctx context.Context, ownerID string) (*PassResult, error) {
				return tt.res, tt.err
			}))

			_, err := s.RunOnce(context.Background())
			assert.Equal(t, tt.err, err)

			st := s.Status(context.Background())
			assert.Equal(t, tt.wantState, st.State)
			assert.Contains(t, st.LastError, tt.wantError)
			assert.Equal(t, tt.offline, st.Offline)

			if tt.wantRetry {
				delay := s.retryDelay()
				assert.Positive(t, delay)
				assert.LessOrEqual(t, delay, 40*time.Millisecond)
			} else {
				assert.Zero(t, s.retryDelay())
			}
		})
	}
}

func TestScheduler_BackoffResetsOnSuccess(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	s := newTestScheduler(runnerFunc(func(ctx context.Context, ownerID string) (*PassResult, error) {
		if fail.Load() {
			return &PassResult{}, &clientapi.TransportError{Op: "ping", Err: errors.New("refused")}
		}
		return &PassResult{}, nil
	}))
	ctx := context.Background()

	for range 5 {
		_, _ = s.RunOnce(ctx)
	}
	assert.Equal(t, 40*time.Millisecond, s.retryDelay(), "capped at backoff max")

	fail.Store(false)
	_, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.retryDelay())
	assert.Equal(t, StatusIdle, s.Status(ctx).State)
}

func TestScheduler_RunOnce_InFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	s := newTestScheduler(runnerFunc(func(ctx context.Context, ownerID string) (*PassResult, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return &PassResult{}, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunOnce(context.Background())
		done <- err
	}()
	<-started

	assert.Equal(t, StatusSyncing, s.Status(context.Background()).State)

	for range 3 {
		_, err := s.RunOnce(context.Background())
		assert.ErrorIs(t, err, ErrPassInFlight)
	}

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), calls.Load(), "busy calls never start a second pass")

	select {
	case reason := <-s.wake:
		assert.Equal(t, ReasonRerun, reason)
	default:
		t.Fatal("expected a single rerun to be scheduled")
	}
	assert.Empty(t, s.wake, "reruns are coalesced")
}

func TestScheduler_Trigger_Coalesces(t *testing.T) {
	s := newTestScheduler(okRunner())

	s.Trigger(ReasonExplicit)
	s.Trigger(ReasonReconnect)
	s.Trigger(ReasonForeground)

	assert.Len(t, s.wake, 1)
	assert.Equal(t, ReasonExplicit, <-s.wake)
}

func TestScheduler_Start(t *testing.T) {
	passes := make(chan struct{}, 10)
	s := newTestScheduler(runnerFunc(func(ctx context.Context, ownerID string) (*PassResult, error) {
		assert.Equal(t, testOwner, ownerID)
		passes <- struct{}{}
		return &PassResult{}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitPass := func() {
		t.Helper()
		select {
		case <-passes:
		case <-time.After(2 * time.Second):
			t.Fatal("sync pass did not run")
		}
	}

	waitPass() // проход при запуске
	s.Trigger(ReasonForeground)
	waitPass()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_Start_RetriesAfterTransportError(t *testing.T) {
	var calls atomic.Int32
	passes := make(chan int32, 10)

	s := newTestScheduler(runnerFunc(func(ctx context.Context, ownerID string) (*PassResult, error) {
		n := calls.Add(1)
		passes <- n
		if n == 1 {
			return &PassResult{}, &clientapi.TransportError{Op: "write", Err: errors.New("reset")}
		}
		return &PassResult{}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	for want := int32(1); want <= 2; want++ {
		select {
		case n := <-passes:
			assert.Equal(t, want, n)
		case <-time.After(2 * time.Second):
			t.Fatalf("pass %d did not run", want)
		}
	}

	assert.Eventually(t, func() bool {
		return s.Status(context.Background()).State == StatusIdle
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_IndependentInstances(t *testing.T) {
	failing := newTestScheduler(runnerFunc(func(ctx context.Context, ownerID string) (*PassResult, error) {
		return &PassResult{}, errors.New("boom")
	}))
	healthy := newTestScheduler(okRunner())

	_, _ = failing.RunOnce(context.Background())
	_, _ = healthy.RunOnce(context.Background())

	assert.Equal(t, StatusError, failing.Status(context.Background()).State)
	assert.Equal(t, StatusIdle, healthy.Status(context.Background()).State)
}
