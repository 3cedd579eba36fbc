package spec

import (
	"fmt"
	"io"
	"strings"
)

// PrintTypes writes every registered type, in insertion order, followed by
// its fields.
//
//	+Header
//	  Byte magic[4]
func PrintTypes(w io.Writer, reg *Registry) error {
	var b strings.Builder
	reg.Each(func(_ TypeHandle, c *Composite) bool {
		name := c.Name
		if c.Anonymous() {
			name = "<anonymous>"
		}
		b.WriteString("+")
		b.WriteString(name)
		if c.Status == Partial {
			b.WriteString(" (partial)")
		}
		b.WriteByte('\n')
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "  %s %s[%d]\n", reg.TypeName(f.Type), displayName(f.Name), f.Length)
		}
		return true
	})
	_, err := io.WriteString(w, b.String())
	return err
}

// PrintInstances writes the instance tree depth first, one line per
// instance: offset, size, then the field name and array length indented
// by depth.
//
//	[0, 0] [5, 3] .[1]
//	[0, 0] [4, 0]   h[1]
func PrintInstances(w io.Writer, t *Tree) error {
	var b strings.Builder
	var emit func(in *Instance, depth int)
	emit = func(in *Instance, depth int) {
		f := t.Field(in)
		fmt.Fprintf(&b, "%s %s %s%s[%d]\n",
			in.Offset, in.Size, strings.Repeat("  ", depth), displayName(f.Name), f.Length)
		for _, c := range in.Children {
			emit(c, depth+1)
		}
	}
	emit(t.root, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func displayName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
