package timeline

import "sync"

// KeyedMutex hands out one mutex per key. WriteEntry uses it so two writers
// for the same entry in one process cannot interleave archive and overwrite.
type KeyedMutex struct {
	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex for key, creating it on first use.
func (k *KeyedMutex) Get(key string) *sync.Mutex {
	k.mu.RLock()
	m, ok := k.locks[key]
	k.mu.RUnlock()
	if ok {
		return m
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	// Another goroutine may have won the race.
	if m, ok := k.locks[key]; ok {
		return m
	}
	m = &sync.Mutex{}
	k.locks[key] = m
	return m
}

// Lock locks key and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	m := k.Get(key)
	m.Lock()
	return m.Unlock
}
