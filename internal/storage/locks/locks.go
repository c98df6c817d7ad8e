// Package locks provides per-key exclusive locks whose acquisition is
// bounded by a timeout or context cancellation.
package locks

import (
	"context"
	"sync"
	"time"
)

// keyLock is a mutex built on a one-slot channel so acquisition can be
// abandoned on timeout, which sync.Mutex does not allow.
type keyLock struct {
	ch chan struct{}
}

func newKeyLock() *keyLock {
	return &keyLock{ch: make(chan struct{}, 1)}
}

// Table hands out exclusive locks keyed by string. Locks are created on
// first use and kept for the lifetime of the table; the key space here is
// account numbers, which is small and long-lived.
type Table struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func NewTable() *Table {
	return &Table{locks: make(map[string]*keyLock)}
}

func (t *Table) lockFor(key string) *keyLock {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[key]
	if !ok {
		l = newKeyLock()
		t.locks[key] = l
	}
	return l
}

// Handle releases one acquired lock. Unlock must be called exactly once.
type Handle struct {
	l    *keyLock
	once sync.Once
}

func (h *Handle) Unlock() {
	h.once.Do(func() {
		<-h.l.ch
	})
}

// Acquire takes the exclusive lock for key, waiting at most timeout.
// It returns context.Cause(ctx) if the context ends first, or
// context.DeadlineExceeded if the timeout elapses.
func (t *Table) Acquire(ctx context.Context, key string, timeout time.Duration) (*Handle, error) {
	l := t.lockFor(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		return &Handle{l: l}, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-timer.C:
		return nil, context.DeadlineExceeded
	}
}
