// Package scheduler provides a restartable, cancelable periodic task used
// for the leaderboard broadcast. Exactly one firing is ever pending: Start
// atomically cancels any armed timer before scheduling the next one, so a
// restart can never produce duplicate broadcasts.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task runs fn every interval until stopped. The zero value is not usable;
// construct with New.
type Task struct {
	log zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	cancel  context.CancelFunc
}

// New returns an idle Task.
func New(log zerolog.Logger) *Task {
	return &Task{log: log}
}

// Start arms the task: fn fires after every interval until Stop. Any
// previously pending firing is canceled first, under the same lock that arms
// the replacement, so at most one firing is pending at any moment. Calling
// Start on a running task restarts its schedule.
//
// fn receives a context that is canceled by Stop; long-running work inside
// fn should honor it.
func (t *Task) Start(interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.stopped = false
	t.cancel = cancel
	t.arm(ctx, interval, fn)
	t.log.Debug().Dur("interval", interval).Msg("task scheduled")
}

// arm schedules the next firing. Callers must hold t.mu.
func (t *Task) arm(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	t.timer = time.AfterFunc(interval, func() {
		if ctx.Err() != nil {
			return
		}
		fn(ctx)

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.stopped || ctx.Err() != nil {
			return
		}
		t.arm(ctx, interval, fn)
	})
}

// Stop cancels the pending firing and the task context. Idempotent; a
// stopped task can be started again.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
