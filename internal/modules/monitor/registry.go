package monitor

import "sync"

// Registry owns one monitor per model/symbol key and serializes access to
// them, since the sweep scheduler and the live data feed run on different
// goroutines.
type Registry struct {
	mu       sync.Mutex
	monitors map[string]*Monitor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{monitors: make(map[string]*Monitor)}
}

// Register adds a monitor under a key, replacing any previous one.
func (r *Registry) Register(key string, m *Monitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitors[key] = m
}

// WithMonitor runs fn with the monitor for key while holding the registry
// lock. Returns false when no monitor is registered under the key.
func (r *Registry) WithMonitor(key string, fn func(*Monitor)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.monitors[key]
	if !ok {
		return false
	}
	fn(m)
	return true
}

// Keys returns the registered monitor keys.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.monitors))
	for k := range r.monitors {
		keys = append(keys, k)
	}
	return keys
}
