package service

import (
	"sync"

	"playtrack/internal/repository"
)

// recordLocks serializes read-modify-write cycles per (child, category).
// Entries are dropped once no goroutine holds or waits on them.
type recordLocks struct {
	mu    sync.Mutex
	locks map[repository.RecordKey]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

func newRecordLocks() *recordLocks {
	return &recordLocks{locks: make(map[repository.RecordKey]*recordLock)}
}

// lock blocks until key is free and returns the matching unlock func
func (l *recordLocks) lock(key repository.RecordKey) func() {
	l.mu.Lock()
	rl, exists := l.locks[key]
	if !exists {
		rl = &recordLock{}
		l.locks[key] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *recordLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
