package spec

import (
	"github.com/wippyai/mfterm/errors"
)

// RootName is the reserved type name of the tree's entry point.
const RootName = "."

// Registry owns the composite types of one specification in insertion
// order, plus the designated root type. Lookups are linear scans; a spec
// rarely declares more than a few dozen types.
type Registry struct {
	types   []*Composite
	root    TypeHandle
	hasRoot bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends c and returns its handle. A named type whose name is
// already registered is rejected.
func (r *Registry) Register(c *Composite) (TypeHandle, error) {
	if c == nil {
		return 0, errors.InvalidInput(errors.PhaseValidate, "register nil type")
	}
	if !c.Anonymous() {
		if _, ok := r.Lookup(c.Name); ok {
			return 0, errors.DuplicateName(errors.PhaseValidate, c.Name)
		}
	}
	h := TypeHandle(len(r.types))
	r.types = append(r.types, c)
	return h, nil
}

// Lookup returns the first type named name. Anonymous types never match.
func (r *Registry) Lookup(name string) (TypeHandle, bool) {
	if name == "" {
		return 0, false
	}
	for i, c := range r.types {
		if c.Name == name {
			return TypeHandle(i), true
		}
	}
	return 0, false
}

// LookupErr is Lookup returning a name_not_found error on a miss.
func (r *Registry) LookupErr(name string) (TypeHandle, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return 0, errors.NameNotFound(errors.PhaseValidate, name)
	}
	return h, nil
}

// Get returns the type for h, or nil if h is not registered.
func (r *Registry) Get(h TypeHandle) *Composite {
	if int(h) >= len(r.types) {
		return nil
	}
	return r.types[h]
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

// Each calls fn for every type in insertion order until fn returns false.
func (r *Registry) Each(fn func(h TypeHandle, c *Composite) bool) {
	for i, c := range r.types {
		if !fn(TypeHandle(i), c) {
			return
		}
	}
}

// CheckComplete returns the first partially declared type, if any. This is
// the gate that must pass before an instance tree is built.
func (r *Registry) CheckComplete() (TypeHandle, bool) {
	for i, c := range r.types {
		if c.Status == Partial {
			return TypeHandle(i), true
		}
	}
	return 0, false
}

// SetRoot designates h as the root type.
func (r *Registry) SetRoot(h TypeHandle) error {
	if r.Get(h) == nil {
		return errors.OutOfBounds(errors.PhaseValidate, nil, int(h), len(r.types))
	}
	r.root = h
	r.hasRoot = true
	return nil
}

// Root returns the root type handle, if one was set.
func (r *Registry) Root() (TypeHandle, bool) {
	return r.root, r.hasRoot
}

// Clear releases every type and unsets the root.
func (r *Registry) Clear() {
	r.types = nil
	r.root = 0
	r.hasRoot = false
}

// TypeName returns a display name for t.
func (r *Registry) TypeName(t TypeRef) string {
	switch t.Kind {
	case KindByte, KindBit:
		return t.Kind.String()
	case KindComposite:
		c := r.Get(t.Handle)
		if c == nil {
			return "<unknown>"
		}
		if c.Anonymous() {
			return "<anonymous>"
		}
		return c.Name
	}
	return "<invalid>"
}
