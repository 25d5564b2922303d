package api

import (
	"sync"
	"time"
)

// Promise is the one-shot result channel between the goroutine waiting on a
// call and the owner goroutine executing it. The cancellation flag and the
// operation body share the same mutex, so "the wrapper cancels" and "the body
// starts executing" cannot race: whichever takes the lock first wins.
type Promise struct {
	mu        sync.Mutex
	cancelled bool
	result    chan Status
}

// NewPromise creates an unresolved, uncancelled promise.
func NewPromise() *Promise {
	return &Promise{result: make(chan Status, 1)}
}

// Lock acquires the promise's mutex. Operation bodies hold it for their whole
// execution.
func (p *Promise) Lock() { p.mu.Lock() }

// Unlock releases the promise's mutex.
func (p *Promise) Unlock() { p.mu.Unlock() }

// CancelledLocked reads the cancellation flag. The caller must hold the lock.
func (p *Promise) CancelledLocked() bool { return p.cancelled }

// Cancelled reads the cancellation flag under the lock.
func (p *Promise) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Cancel sets the cancellation flag. If the operation body is already
// executing, Cancel blocks until the body releases the lock, i.e. until the
// body has finished.
func (p *Promise) Cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
}

// Resolve sets the result. Only the first call takes effect; later calls are
// no-ops.
func (p *Promise) Resolve(s Status) {
	select {
	case p.result <- s:
	default:
	}
}

// Wait blocks until the promise resolves or the timeout elapses.
func (p *Promise) Wait(timeout time.Duration) (Status, bool) {
	select {
	case s := <-p.result:
		return s, true
	case <-time.After(timeout):
		return StatusOK, false
	}
}

// Poll returns the result if the promise has already resolved, without
// blocking.
func (p *Promise) Poll() (Status, bool) {
	select {
	case s := <-p.result:
		return s, true
	default:
		return StatusOK, false
	}
}
