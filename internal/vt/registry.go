package vt

import (
	"sync"

	"github.com/dguik/discode/internal/query"
)

// Window bundles one instance's VT screen with the query responder bound to
// it, since both share the same private-mode/cursor state (§5).
type Window struct {
	VT        *VT
	Responder *query.Record
}

// Registry holds one Window per serialization key (projectName:agentType or
// projectName:agentType:instanceId, matching routing.InstanceKey), created
// lazily on first use and kept until Remove is called for its key.
type Registry struct {
	mu      sync.Mutex
	windows map[string]*Window
	cols    int
	rows    int
}

// NewRegistry creates an empty registry; new windows default to cols x rows.
func NewRegistry(cols, rows int) *Registry {
	return &Registry{windows: make(map[string]*Window), cols: cols, rows: rows}
}

// GetOrCreate returns the window for key, creating it with the registry's
// default size if absent.
func (r *Registry) GetOrCreate(key string) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[key]
	if ok {
		return w
	}

	vtScreen := New(r.cols, r.rows)
	w = &Window{
		VT:        vtScreen,
		Responder: &query.Record{Screen: vtScreen},
	}
	r.windows[key] = w
	return w
}

// Get returns the window for key, if any.
func (r *Registry) Get(key string) (*Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[key]
	return w, ok
}

// Remove discards the window for key.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, key)
}

// Keys returns the current set of window keys, for periodic snapshot sweeps.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.windows))
	for k := range r.windows {
		keys = append(keys, k)
	}
	return keys
}
