package reactive

import (
	"github.com/drblury/stateflow/target"
)

// propertyEntry holds the per-property observer lists. Bindings render in
// binding order; watchers run in registration order. Entries are created on
// first use and never removed, so both slices may be empty but the entry
// pointer stays stable for the life of the state.
type propertyEntry struct {
	watchers []Watcher
	bindings []target.Target
}

func (e *propertyEntry) addWatcher(w Watcher) {
	e.watchers = append(e.watchers, w)
}

func (e *propertyEntry) addBinding(t target.Target) {
	e.bindings = append(e.bindings, t)
}

// removeBinding drops the first occurrence of t and reports whether it was
// present.
func (e *propertyEntry) removeBinding(t target.Target) bool {
	for i, bound := range e.bindings {
		if bound == t {
			e.bindings = append(e.bindings[:i], e.bindings[i+1:]...)
			return true
		}
	}
	return false
}

// snapshotBindings copies the binding list so the render fan-out survives a
// bind or unbind performed from inside a render callback.
func (e *propertyEntry) snapshotBindings() []target.Target {
	if len(e.bindings) == 0 {
		return nil
	}
	out := make([]target.Target, len(e.bindings))
	copy(out, e.bindings)
	return out
}

// propertyRegistry maps property names to their observer entries. One
// registry belongs to exactly one state; lookups never fail.
type propertyRegistry struct {
	entries map[string]*propertyEntry
}

func newPropertyRegistry() *propertyRegistry {
	return &propertyRegistry{entries: make(map[string]*propertyEntry)}
}

// entry returns the stable entry for key, creating it on first use.
func (r *propertyRegistry) entry(key string) *propertyEntry {
	if e, ok := r.entries[key]; ok {
		return e
	}
	e := &propertyEntry{}
	r.entries[key] = e
	return e
}

// peek returns the entry for key without creating one.
func (r *propertyRegistry) peek(key string) (*propertyEntry, bool) {
	e, ok := r.entries[key]
	return e, ok
}
