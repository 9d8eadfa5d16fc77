package model

import (
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry maps symbolic names to repositories. Values are stored untyped;
// callers assert the Repository[T] they expect. Safe for concurrent use.
type Registry struct {
	m *xsync.MapOf[string, any]
}

func NewRegistry() *Registry {
	return &Registry{m: xsync.NewMapOf[string, any]()}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry. Populate it from main.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register binds name to repo, replacing any previous binding.
func (r *Registry) Register(name string, repo any) {
	r.m.Store(name, repo)
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.m.Delete(name)
}

func (r *Registry) Lookup(name string) (any, bool) {
	return r.m.Load(name)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, r.m.Size())
	r.m.Range(func(k string, _ any) bool {
		out = append(out, k)
		return true
	})
	sort.Strings(out)
	return out
}

// Register is a typed helper for r.Register.
func Register[T Entity](r *Registry, name string, repo Repository[T]) {
	r.Register(name, repo)
}

// Resolve looks name up and asserts it serves T.
func Resolve[T Entity](r *Registry, name string) (Repository[T], bool) {
	v, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	repo, ok := v.(Repository[T])
	return repo, ok
}
