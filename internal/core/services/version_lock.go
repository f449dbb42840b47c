package services

import (
	"sync"

	"github.com/google/uuid"
)

type versionKey struct {
	projectID uuid.UUID
	versionID uuid.UUID
}

type versionLock struct {
	mu   sync.Mutex
	refs int
}

// VersionLocks serializes writers per (project, version) inside one process.
// Different versions never block each other. Storage uniqueness still guards
// writers in other processes.
type VersionLocks struct {
	mu    sync.Mutex
	locks map[versionKey]*versionLock
}

func NewVersionLocks() *VersionLocks {
	return &VersionLocks{locks: make(map[versionKey]*versionLock)}
}

// Lock blocks until the caller is the only writer of the version and returns
// the function that releases it.
func (l *VersionLocks) Lock(projectID, versionID uuid.UUID) func() {
	key := versionKey{projectID: projectID, versionID: versionID}

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &versionLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
