package registry

import (
	"sort"
	"sync"
)

// Registry is a key/value table whose keys can be locked against further writes.
// Applications carry their own Registry for extension state; GlobalRegistry holds
// the init-time module and command lists.
type Registry struct {
	mu     sync.RWMutex
	values map[string]interface{}
	locked map[string]bool
}

// GlobalRegistry is the process-level registry used by init-time registration.
var GlobalRegistry = New()

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
}

// Get returns the value stored under key.
func (r *Registry) Get(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// Set stores value under key. Panics if key is locked.
func (r *Registry) Set(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[key] {
		panic("core/registry: key locked: " + key)
	}
	r.values[key] = value
}

// SetIfAbsent stores value under key only when nothing is stored there yet.
// Returns false if key already holds a value.
func (r *Registry) SetIfAbsent(key string, value interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; ok {
		return false
	}
	if r.locked[key] {
		panic("core/registry: key locked: " + key)
	}
	r.values[key] = value
	return true
}

// Has reports whether key holds a value.
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns all keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lock makes key immutable.
func (r *Registry) Lock(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = true
}

// IsLocked reports whether key is locked.
func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting removes the lock on key.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locked, key)
}
