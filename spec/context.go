package spec

import (
	"go.uber.org/zap"

	"github.com/wippyai/mfterm/errors"
)

// Context holds the one active specification: its type registry and, once
// built, the instance tree. It replaces process-wide state; callers own it
// and sequence imports themselves.
type Context struct {
	reg  *Registry
	tree *Tree
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{reg: NewRegistry()}
}

// Registry returns the type registry.
func (c *Context) Registry() *Registry {
	return c.reg
}

// Tree returns the instance tree, or nil if none has been built.
func (c *Context) Tree() *Tree {
	return c.tree
}

// ClearTree releases the instance tree.
func (c *Context) ClearTree() {
	c.tree = nil
}

// Clear releases the instance tree and then every registered type.
func (c *Context) Clear() {
	c.ClearTree()
	c.reg.Clear()
}

// Validate runs the import checks: every type complete and a root set.
func (c *Context) Validate() (TypeHandle, error) {
	if h, partial := c.reg.CheckComplete(); partial {
		return 0, errors.IncompleteDeclaration(errors.PhaseValidate, c.reg.TypeName(Ref(h)))
	}
	root, ok := c.reg.Root()
	if !ok {
		return 0, errors.RootTypeMissing()
	}
	return root, nil
}

// Build validates the registry and lays out the root type, replacing any
// previous tree. On failure the previous tree is released as well.
func (c *Context) Build() (*Tree, error) {
	c.ClearTree()
	root, err := c.Validate()
	if err != nil {
		return nil, err
	}
	t, err := Build(c.reg, root)
	if err != nil {
		Logger().Debug("layout failed", zap.Error(err))
		return nil, err
	}
	c.tree = t
	return t, nil
}

// Resolve resolves path against the current tree.
func (c *Context) Resolve(path string) (*Instance, bool) {
	return c.tree.Resolve(path)
}

// ResolvePartial resolves the complete segments of path against the current tree.
func (c *Context) ResolvePartial(path string) (string, *Instance, bool) {
	return c.tree.ResolvePartial(path)
}

// Complete returns completion candidates for path against the current tree.
func (c *Context) Complete(path string) []string {
	if c.tree == nil {
		return nil
	}
	return c.tree.Complete(path)
}
