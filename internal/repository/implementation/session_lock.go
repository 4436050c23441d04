package implementation

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// sessionLocks hands out one binary semaphore per session id. Entries live
// only while somebody holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the session is free or ctx is done. The returned func
// releases the lock.
func (s *sessionLocks) Lock(ctx context.Context, sessionId string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[sessionId]
	if !ok {
		l = &sessionLock{sem: semaphore.NewWeighted(1)}
		s.locks[sessionId] = l
	}
	l.refs++
	s.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		s.release(sessionId, l)
		return nil, err
	}

	return func() {
		l.sem.Release(1)
		s.release(sessionId, l)
	}, nil
}

func (s *sessionLocks) release(sessionId string, l *sessionLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, sessionId)
	}
}

func (s *sessionLocks) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
