// Package dispatch serializes the backend calls a single view makes. Each
// view owns one Runner; a submission arriving while another is in flight is
// refused instead of queued, which is what keeps double-clicks from sending
// two requests.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gammazero/workerpool"
)

// ErrBusy is returned when the view already has an operation in flight.
var ErrBusy = errors.New("operation already in progress")

type Runner struct {
	pool *workerpool.WorkerPool
	busy atomic.Bool
}

func NewRunner() *Runner {
	// Pool size 1: a view never has two requests in flight.
	return &Runner{pool: workerpool.New(1)}
}

// Do runs fn unless another operation is in flight. When ctx is cancelled
// before fn finishes, Do returns the context error and the late result is
// discarded; fn itself keeps running to completion on the pool.
func (r *Runner) Do(ctx context.Context, fn func(context.Context) error) error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	done := make(chan error, 1)
	r.pool.Submit(func() {
		defer r.busy.Store(false)
		done <- execute(ctx, fn)
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop waits for any in-flight operation and releases the pool.
func (r *Runner) Stop() {
	r.pool.StopWait()
}

func execute(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in dispatched operation: %v", rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
