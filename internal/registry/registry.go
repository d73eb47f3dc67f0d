// Package registry holds ordered lists of callbacks with stable handles.
package registry

import "sync"

// Registry is an insertion-ordered list of callbacks of type T.
//
// The zero value is ready to use. Registry is safe for concurrent use;
// dispatch iterates a snapshot so callbacks may register or unregister
// while a dispatch pass is running without affecting that pass.
type Registry[T any] struct {
	mu      sync.Mutex
	entries []*entry[T]
}

type entry[T any] struct {
	fn T
}

// Register appends fn and returns a function that removes it again.
//
// Removal is keyed on the registration itself rather than on position or
// value, so calling the returned function twice never removes a different
// callback registered later.
func (r *Registry[T]) Register(fn T) (unregister func()) {
	e := &entry[T]{fn: fn}

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(e) })
	}
}

func (r *Registry[T]) remove(e *entry[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, cur := range r.entries {
		if cur == e {
			// Copy so snapshots handed out earlier keep their view.
			next := make([]*entry[T], 0, len(r.entries)-1)
			next = append(next, r.entries[:i]...)
			r.entries = append(next, r.entries[i+1:]...)
			return
		}
	}
}

// Snapshot returns the registered callbacks in insertion order.
func (r *Registry[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.fn
	}
	return out
}

// Each calls visit for every callback in a snapshot taken at call time.
func (r *Registry[T]) Each(visit func(fn T)) {
	for _, fn := range r.Snapshot() {
		visit(fn)
	}
}

// Len returns the number of registered callbacks.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
