// Package rwlock provides a reader-writer lock with scoped acquisition helpers
// and the check-again escalation discipline used by the registry and activities.
package rwlock

import (
	"sync"
	"sync/atomic"
)

// Lock is a two-mode lock: many concurrent readers or one writer.
//
// Go locks have no owner identity, so a read hold cannot be upgraded in place.
// Escalate releases the read hold, acquires the write hold and re-runs the
// caller's check before mutating.
type Lock struct {
	mu      sync.RWMutex
	readers atomic.Int32
}

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{}
}

// RLock acquires a shared hold.
func (l *Lock) RLock() {
	l.mu.RLock()
	l.readers.Add(1)
}

// RUnlock releases a shared hold.
func (l *Lock) RUnlock() {
	l.readers.Add(-1)
	l.mu.RUnlock()
}

// Lock acquires the exclusive hold.
func (l *Lock) Lock() {
	l.mu.Lock()
}

// Unlock releases the exclusive hold.
func (l *Lock) Unlock() {
	l.mu.Unlock()
}

// Readers reports how many shared holds are currently outstanding.
func (l *Lock) Readers() int {
	return int(l.readers.Load())
}

// Read runs fn under a shared hold. The hold is released on every exit path.
func (l *Lock) Read(fn func()) {
	l.RLock()
	defer l.RUnlock()
	fn()
}

// Write runs fn under the exclusive hold. The hold is released on every exit path.
func (l *Lock) Write(fn func()) {
	l.Lock()
	defer l.Unlock()
	fn()
}

// Escalate runs check under a shared hold. If check reports that a mutation
// is needed, the shared hold is dropped, the exclusive hold is taken and check
// runs again, since another writer may have won the gap. mutate runs only if
// the second check still agrees. Returns whether mutate ran.
func (l *Lock) Escalate(check func() bool, mutate func()) bool {
	var needed bool
	l.Read(func() { needed = check() })
	if !needed {
		return false
	}

	l.Lock()
	defer l.Unlock()
	if !check() {
		return false
	}
	mutate()
	return true
}

// ReadValue runs fn under a shared hold and returns its result.
func ReadValue[T any](l *Lock, fn func() T) T {
	l.RLock()
	defer l.RUnlock()
	return fn()
}

// WriteValue runs fn under the exclusive hold and returns its result.
func WriteValue[T any](l *Lock, fn func() T) T {
	l.Lock()
	defer l.Unlock()
	return fn()
}
