package function

import (
	"context"
	"sort"
	"sync"
)

// Invoker is the type-erased view of an implementation. *Impl satisfies it
// for every type pair.
type Invoker interface {
	Function() string
	Name() string
	InvokeAny(ctx context.Context, input any) (any, error)
}

// Registry maps (function, implementation name) pairs to invokers. It is
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	impls map[string]map[string]Invoker
}

func NewRegistry() *Registry {
	return &Registry{impls: make(map[string]map[string]Invoker)}
}

// Add registers inv under its own function and name.
func (r *Registry) Add(inv Invoker) error {
	return r.Register(inv.Function(), inv.Name(), inv)
}

// Register stores inv under function/name. Registering the same name twice
// for one function returns *DuplicateImplementationError.
func (r *Registry) Register(function, name string, inv Invoker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.impls[function]
	if !ok {
		byName = make(map[string]Invoker)
		r.impls[function] = byName
	}
	if _, dup := byName[name]; dup {
		return &DuplicateImplementationError{Function: function, Name: name}
	}
	byName[name] = inv
	return nil
}

func (r *Registry) Lookup(function, name string) (Invoker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.impls[function][name]
	return inv, ok
}

// Functions lists registered function names in sorted order.
func (r *Registry) Functions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.impls))
	for name := range r.impls {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Implementations lists the implementation names of function in sorted order.
func (r *Registry) Implementations(function string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := r.impls[function]
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Invoke runs the named implementation on input.
func (r *Registry) Invoke(ctx context.Context, function, name string, input any) (any, error) {
	inv, ok := r.Lookup(function, name)
	if !ok {
		return nil, &UnknownImplementationError{Function: function, Name: name}
	}
	return inv.InvokeAny(ctx, input)
}

// Register adds impl to reg keeping its static types at the call site.
func Register[In, Out any](reg *Registry, impl *Impl[In, Out]) error {
	return reg.Register(impl.Function(), impl.Name(), impl)
}
