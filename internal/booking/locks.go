package booking

import "sync"

// KeyedMutex provides exclusive locks scoped to a string key, so
// reservations against different ticket types (or validations of
// different tickets) proceed independently while operations on the
// same entity are strictly serialized.  Entries are reference
// counted and removed once the last holder releases, keeping the
// table bounded by the number of keys currently contended.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex returns an empty lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*lockEntry)}
}

// Lock acquires the exclusive lock for key, blocking until it is
// available, and returns the function that releases it.  The unlock
// function must be called exactly once; releasing via defer keeps
// the lock safe against callers that abandon the request.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
