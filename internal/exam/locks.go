package exam

import "sync"

// userLocks hands out one mutex per student so that review-set rebuilds and
// review submissions for the same student never interleave.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{m: map[string]*sync.Mutex{}}
}

func (l *userLocks) lock(userID string) *sync.Mutex {
	l.mu.Lock()
	mu, ok := l.m[userID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[userID] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu
}
