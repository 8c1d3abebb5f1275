package cart

import (
	"context"
	"sync"
)

// StorageFactory returns the storage for a session
type StorageFactory func(sessionID string) Storage

// Registry gives request handlers serialized access to per-session carts.
// Each call hydrates the session's store from storage, so any number of
// server instances can share one storage backend.
type Registry struct {
	factory StorageFactory

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewRegistry(factory StorageFactory) *Registry {
	return &Registry{
		factory: factory,
		locks:   make(map[string]*sessionLock),
	}
}

// With runs fn with the session's store while holding the session lock
func (r *Registry) With(ctx context.Context, sessionID string, fn func(*Store) error) error {
	lock := r.acquire(sessionID)
	defer r.release(sessionID, lock)

	store := New(ctx, r.factory(sessionID))
	return fn(store)
}

func (r *Registry) acquire(sessionID string) *sessionLock {
	r.mu.Lock()
	lock, ok := r.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		r.locks[sessionID] = lock
	}
	lock.refs++
	r.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (r *Registry) release(sessionID string, lock *sessionLock) {
	lock.mu.Unlock()

	r.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, sessionID)
	}
	r.mu.Unlock()
}
