package registry

import "sync"

// Registry is a thread-safe key-value store for global extension
// points (cmd, cron, api modules). Keys can be locked after startup so
// late registration panics loudly instead of silently doing nothing.
type Registry struct {
	mu     sync.RWMutex
	values map[string]interface{}
	locked map[string]bool
}

// GlobalRegistry is the process-wide registry instance.
var GlobalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
}

// GetGlobal returns the value stored under key.
func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// SetGlobal stores a value under key. Callers check IsLocked first;
// registries enforce their own panic policy.
func (r *Registry) SetGlobal(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

// Lock marks a key immutable. Subsequent registration attempts panic
// in the owning registry.
func (r *Registry) Lock(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = true
}

// IsLocked reports whether a key has been locked.
func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting reopens a locked key. Tests only.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = false
}
