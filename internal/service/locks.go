package service

import "sync"

// ownerLocks serializes tree mutations per owner. Folder create/move and
// cascade deletes for the same owner take the same lock so a move cannot
// reattach a subtree that a concurrent delete is walking. Different owners
// never contend.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the owner's lock and returns its release func.
func (l *ownerLocks) Lock(ownerID string) func() {
	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
