package businessflow

import "sync"

// keyedMutex serializes work per key. Conversation handling locks on the
// contact phone so concurrent inbound events for the same contact cannot
// interleave history appends; events for different contacts proceed in
// parallel. Entries are never evicted; the contact population bounds the map.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
