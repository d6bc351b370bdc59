package registry

import "sync"

// MemoryRegistry is a session registry that lives as long as the process.
type MemoryRegistry struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-process registry.
func NewMemory() *MemoryRegistry {
	return &MemoryRegistry{values: make(map[string]string)}
}

func (r *MemoryRegistry) GetString(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	return v, ok
}

func (r *MemoryRegistry) SetString(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = value
	return nil
}

func (r *MemoryRegistry) ClearString(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, name)
	return nil
}

// Len returns the number of stored names.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}

// Reset drops every value, as when a new session begins.
func (r *MemoryRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[string]string)
}
