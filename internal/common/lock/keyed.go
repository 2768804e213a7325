// Package lock provides in-process keyed mutual exclusion. Check-then-write
// sequences that must be atomic per key (a resource+date, a user+month) take
// the key's lock for the duration of the sequence; the database's constraints
// remain the backstop across processes.
package lock

import (
	"sync"
)

// Keyed hands out one mutex per key.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyed creates an empty keyed lock set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *Keyed) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for key.
func (k *Keyed) Unlock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	k.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
