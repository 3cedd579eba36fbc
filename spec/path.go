package spec

import (
	"strings"

	"github.com/wippyai/mfterm/errors"
)

// Resolve finds the instance addressed by a dotted path such as ".h.magic".
// The leading '.' is the root. Each segment is matched against the named
// direct children of the current instance in declaration order.
func (t *Tree) Resolve(path string) (*Instance, bool) {
	if t == nil || !strings.HasPrefix(path, ".") {
		return nil, false
	}
	cur := t.root
	if path == "." {
		return cur, true
	}
	for _, seg := range strings.Split(path[1:], ".") {
		cur = t.child(cur, seg)
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// ResolveErr is Resolve returning an invalid_path error on failure.
func (t *Tree) ResolveErr(path string) (*Instance, error) {
	in, ok := t.Resolve(path)
	if !ok {
		return nil, errors.InvalidPath(path)
	}
	return in, nil
}

// ResolvePartial resolves every complete segment of path (each one followed
// by a '.') and returns the consumed prefix together with the instance whose
// children are candidates for the trailing, incomplete segment.
//
//	ResolvePartial(".h.ma") // ".h.", <instance of h>, true
func (t *Tree) ResolvePartial(path string) (string, *Instance, bool) {
	if t == nil || !strings.HasPrefix(path, ".") {
		return "", nil, false
	}
	cut := strings.LastIndexByte(path, '.')
	cur := t.root
	if cut > 0 {
		for _, seg := range strings.Split(path[1:cut], ".") {
			if seg == "" {
				return "", nil, false
			}
			cur = t.child(cur, seg)
			if cur == nil {
				return "", nil, false
			}
		}
	}
	return path[:cut+1], cur, true
}

// Complete returns the full paths that complete the trailing segment of
// path, in declaration order.
func (t *Tree) Complete(path string) []string {
	prefix, parent, ok := t.ResolvePartial(path)
	if !ok {
		return nil
	}
	partial := path[len(prefix):]
	var out []string
	for _, c := range parent.Children {
		name := t.Name(c)
		if name != "" && strings.HasPrefix(name, partial) {
			out = append(out, prefix+name)
		}
	}
	return out
}

// Walk visits every addressable instance in depth-first pre-order with its
// path, starting at the root. Filler subtrees are skipped. Walk stops when
// fn returns false.
func (t *Tree) Walk(fn func(path string, in *Instance) bool) {
	var walk func(path string, in *Instance) bool
	walk = func(path string, in *Instance) bool {
		if !fn(path, in) {
			return false
		}
		sep := "."
		if path == "." {
			sep = ""
		}
		for _, c := range in.Children {
			name := t.Name(c)
			if name == "" {
				continue
			}
			if !walk(path+sep+name, c) {
				return false
			}
		}
		return true
	}
	walk(".", t.root)
}

// Path returns the dotted path of in, or false if in is a filler, lies
// under a filler, or is not part of t.
func (t *Tree) Path(in *Instance) (string, bool) {
	var found string
	t.Walk(func(path string, c *Instance) bool {
		if c == in {
			found = path
			return false
		}
		return true
	})
	return found, found != ""
}

func (t *Tree) child(in *Instance, name string) *Instance {
	if name == "" {
		return nil
	}
	for _, c := range in.Children {
		if t.Name(c) == name {
			return c
		}
	}
	return nil
}
