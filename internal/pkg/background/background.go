// Package background runs fire-and-forget side effects detached from the
// request path. Task errors are funneled into a bounded channel drained by a
// single logging goroutine, so a slow logger can never block a request and a
// failing task can never reach the caller.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type taskError struct {
	task string
	err  error
}

// Runner schedules detached tasks.
type Runner struct {
	timeout time.Duration
	errs    chan taskError
	wg      sync.WaitGroup
	once    sync.Once
	done    chan struct{}
}

// New creates a Runner. buffer bounds the error channel; when it is full
// further errors are dropped (the task already ran, only the log line is
// lost). timeout caps each task's context.
func New(buffer int, timeout time.Duration) *Runner {
	r := &Runner{
		timeout: timeout,
		errs:    make(chan taskError, buffer),
		done:    make(chan struct{}),
	}
	go r.drain()
	return r
}

// Go runs fn detached from the caller. The task receives a fresh context
// with the runner's timeout: cancellation of the originating request must
// not cancel an in-flight side effect. Panics are recovered and reported
// like errors.
func (r *Runner) Go(task string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.report(task, fmt.Errorf("panic: %v", p))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.report(task, err)
		}
	}()
}

func (r *Runner) report(task string, err error) {
	select {
	case r.errs <- taskError{task: task, err: err}:
	default:
		// channel full, drop
	}
}

func (r *Runner) drain() {
	for {
		select {
		case te := <-r.errs:
			slog.Warn("background task failed", "task", te.task, "err", te.err)
		case <-r.done:
			return
		}
	}
}

// Wait blocks until all scheduled tasks have finished. Used by tests and by
// shutdown; new tasks may still be scheduled afterwards.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close stops the drain goroutine after all in-flight tasks finish.
func (r *Runner) Close() {
	r.wg.Wait()
	r.once.Do(func() { close(r.done) })
}
