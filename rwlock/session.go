package rwlock

import "sync"

// Session tracks the shared holds one caller has taken on a Lock so that they
// can be released together, e.g. when the caller bails out of a multi-step read.
// A Session is owned by a single caller; its counter is guarded only so that
// ReleaseAll may be invoked from a deferred cleanup on another goroutine.
type Session struct {
	lock  *Lock
	mu    sync.Mutex
	holds int
}

// Session opens a new hold-tracking session on l.
func (l *Lock) Session() *Session {
	return &Session{lock: l}
}

// RLock acquires a shared hold owned by this session.
func (s *Session) RLock() {
	s.lock.RLock()
	s.mu.Lock()
	s.holds++
	s.mu.Unlock()
}

// RUnlock releases one shared hold owned by this session. It is a no-op when
// the session holds nothing.
func (s *Session) RUnlock() {
	s.mu.Lock()
	if s.holds == 0 {
		s.mu.Unlock()
		return
	}
	s.holds--
	s.mu.Unlock()
	s.lock.RUnlock()
}

// Holds reports how many shared holds the session currently owns.
func (s *Session) Holds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds
}

// ReleaseAll releases every shared hold owned by this session and returns how
// many were released. Holds taken by other sessions are untouched.
func (s *Session) ReleaseAll() int {
	s.mu.Lock()
	n := s.holds
	s.holds = 0
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.lock.RUnlock()
	}
	return n
}
