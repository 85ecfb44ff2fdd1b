package track

import "sync"

// Registry maps type keys to creation counts. All access goes through one mutex.
type Registry struct {
	mu     sync.Mutex
	counts map[string]uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counts: make(map[string]uint64),
	}
}

// Increment adds one to key's count and returns the new value.
func (r *Registry) Increment(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.counts[key] + 1
	r.counts[key] = n
	return n
}

// Count returns the current count for key.
func (r *Registry) Count(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

// Len returns the number of distinct keys.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counts)
}

// Reset clears all entries in place.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.counts)
}

// Snapshot copies the entries under the lock. Order is unspecified.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	entries := make([]Entry, 0, len(r.counts))
	for k, v := range r.counts {
		entries = append(entries, Entry{Key: k, Count: v})
	}
	r.mu.Unlock()
	return entries
}
