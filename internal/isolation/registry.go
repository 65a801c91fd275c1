package isolation

import "sync"

// Registry hands out process-wide executors keyed by domain name. Services
// that ask for the same name share one serialization domain.
type Registry struct {
	mu      sync.Mutex
	domains map[string]*Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{domains: make(map[string]*Executor)}
}

// Default is the registry used when none is injected.
var Default = NewRegistry()

// Domain returns the executor for name, starting it on first use.
func (r *Registry) Domain(name string) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.domains[name]; ok {
		return e
	}
	e := NewExecutor(name)
	r.domains[name] = e
	return e
}

// Close stops every domain and forgets it.
func (r *Registry) Close() {
	r.mu.Lock()
	domains := r.domains
	r.domains = make(map[string]*Executor)
	r.mu.Unlock()

	for _, e := range domains {
		e.Close()
	}
}
