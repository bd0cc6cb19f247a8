package breaker

import "sync"

// Registry holds one circuit breaker per logical target (e.g., a host).
// It is owned by whoever composes the breakers — typically a network
// client instance — rather than being process-wide state.
type Registry struct {
	config Config

	// Notify, when set, is called with the target name on every state
	// change of any breaker in the registry. Set it before the first Get.
	Notify func(name string, from, to State)

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a registry whose breakers share the given config.
func NewRegistry(config Config) *Registry {
	return &Registry{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for the named target, creating it on first use.
// All callers targeting the same name share one breaker instance.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[name]
	if !ok {
		cfg := r.config
		if r.Notify != nil {
			notify := r.Notify
			inner := cfg.OnStateChange
			cfg.OnStateChange = func(from, to State) {
				if inner != nil {
					inner(from, to)
				}
				notify(name, from, to)
			}
		}
		cb = New(cfg)
		r.breakers[name] = cb
	}
	return cb
}

// Names returns the names of all registered breakers.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	return names
}
