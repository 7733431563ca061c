// Package task runs delayed asynchronous work whose result can be awaited or
// cancelled. Cancelling the context a task was started with (or calling
// Cancel) suppresses a callback that has not started yet.
package task

import (
	"context"
	"errors"
	"time"
)

// ErrCancelled is returned by Wait when the task never ran its callback
var ErrCancelled = errors.New("task cancelled")

// Task is a handle on one asynchronous computation
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// Run starts fn in a new goroutine
func Run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	return After(ctx, 0, fn)
}

// After starts fn once delay has elapsed, unless ctx is cancelled first
func After[T any](ctx context.Context, delay time.Duration, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(t.done)
		defer cancel()

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				t.err = ErrCancelled
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			t.err = ErrCancelled
			return
		}

		t.value, t.err = fn(ctx)
	}()

	return t
}

// Done is closed when the task has finished or was cancelled
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Cancel stops the task if its callback has not started yet.
// A running callback sees its context cancelled.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done.
// If ctx ends first the task is cancelled and ctx.Err() is returned.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		t.cancel()
		var zero T
		return zero, ctx.Err()
	}
}
