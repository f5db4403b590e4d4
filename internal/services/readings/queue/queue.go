// Package queue implements the bounded concurrency dispatcher
//
// Jobs start in FIFO enqueue order under a fixed concurrency ceiling. The
// per-job timeout clock starts when the job begins running, not at enqueue.
// Concurrent jobs sharing a fingerprint coalesce onto one execution via
// singleflight, so a thundering herd of identical misses costs one oracle call
package queue

import (
	"container/list"
	"context"
	"sync"
	"time"

	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"

	"golang.org/x/sync/singleflight"
)

// Job produces a result under the context's deadline
type Job func(ctx context.Context) (string, error)

// Dispatcher bounds and orders concurrent jobs
type Dispatcher struct {
	mu      sync.Mutex
	limit   int
	timeout time.Duration
	running int
	waiters *list.List // of chan struct{}, front is next to start

	group singleflight.Group
}

// New builds a Dispatcher with the given concurrency bound and per-job timeout
func New(concurrency int, timeout time.Duration) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Dispatcher{
		limit:   concurrency,
		timeout: timeout,
		waiters: list.New(),
	}
}

// Waiting returns the number of jobs queued but not yet started
func (d *Dispatcher) Waiting() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waiters.Len()
}

// Running returns the number of jobs currently executing
func (d *Dispatcher) Running() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Do runs job under the concurrency bound, coalescing callers that share a
// fingerprint onto a single execution. The caller's ctx only governs how long
// it is willing to wait for the shared result; the execution itself runs under
// the dispatcher's own timeout so an abandoned caller never cancels a result
// other callers are still waiting on
func (d *Dispatcher) Do(ctx context.Context, fingerprint string, job Job) (string, error) {
	ch := d.group.DoChan(fingerprint, func() (any, error) {
		return d.run(job)
	})
	select {
	case res := <-ch:
		s, _ := res.Val.(string)
		return s, res.Err
	case <-ctx.Done():
		return "", perr.Wrapf(ctx.Err(), perr.ErrorCodeTimeout, "abandoned while waiting for dispatch")
	}
}

// run acquires a slot in FIFO order, executes, and releases
func (d *Dispatcher) run(job Job) (string, error) {
	d.acquire()
	defer d.release()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	type result struct {
		s   string
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := job(ctx)
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		return r.s, r.err
	case <-ctx.Done():
		// cancel tears down the underlying call via ctx; the goroutine
		// finishes into the buffered channel and is collected
		return "", perr.Timeoutf("job timed out after %s", d.timeout)
	}
}

// acquire blocks until a slot is free, honoring FIFO start order
func (d *Dispatcher) acquire() {
	d.mu.Lock()
	if d.running < d.limit && d.waiters.Len() == 0 {
		d.running++
		d.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	d.waiters.PushBack(ch)
	d.mu.Unlock()
	<-ch
}

// release hands the slot to the oldest waiter, or frees it
func (d *Dispatcher) release() {
	d.mu.Lock()
	if el := d.waiters.Front(); el != nil {
		d.waiters.Remove(el)
		// slot transfers to the waiter; running count is unchanged
		close(el.Value.(chan struct{}))
	} else {
		d.running--
	}
	d.mu.Unlock()
}
