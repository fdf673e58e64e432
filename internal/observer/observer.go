package observer

import "sync"

type entry struct {
	id int
	fn func()
}

// Registry holds change callbacks. The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	nextID  int
	entries []entry
}

// Subscribe registers fn and returns a function that unregisters it.
func (r *Registry) Subscribe(fn func()) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, entry{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.entries {
			if e.id == id {
				r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every registered callback in subscription order.
// Callers must not hold a lock the callbacks may take.
func (r *Registry) Notify() {
	r.mu.Lock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	for _, e := range entries {
		e.fn()
	}
}
