package spec

import (
	"go.uber.org/zap"

	"github.com/wippyai/mfterm/errors"
)

// RootField is the FieldRef index of the synthetic root field '.'.
const RootField = -1

// FieldRef points at a field in the registry: field Index of type Owner.
type FieldRef struct {
	Owner TypeHandle
	Index int
}

// Instance is a laid out field: where it starts and how much space it
// takes. Composite instances hold the instances of their fields as
// Children. An array of composites keeps a single element subtree,
// positioned as the first element; Size covers the whole array.
type Instance struct {
	Children []*Instance
	Field    FieldRef
	Offset   Pos
	Size     Pos
}

// IsRoot reports whether in is the synthetic root instance.
func (in *Instance) IsRoot() bool {
	return in.Field.Index == RootField
}

// End returns the first position after in.
func (in *Instance) End() Pos {
	return in.Offset.Add(in.Size)
}

// Tree is an instance tree built from a registry. It is immutable and
// borrows field data from the registry, which must not be modified or
// cleared while the tree is in use.
type Tree struct {
	reg  *Registry
	root *Instance
}

// Root returns the root instance.
func (t *Tree) Root() *Instance {
	return t.root
}

// Registry returns the registry the tree was built from.
func (t *Tree) Registry() *Registry {
	return t.reg
}

// Field returns the field in was laid out from. The root instance reports
// the synthetic field '.' of length 1.
func (t *Tree) Field(in *Instance) Field {
	if in.IsRoot() {
		return Field{Name: RootName, Type: Ref(in.Field.Owner), Length: 1}
	}
	c := t.reg.Get(in.Field.Owner)
	if c == nil || in.Field.Index < 0 || in.Field.Index >= len(c.Fields) {
		return Field{}
	}
	return c.Fields[in.Field.Index]
}

// Name returns the field name of in; empty for fillers.
func (t *Tree) Name(in *Instance) string {
	return t.Field(in).Name
}

// Count returns the number of instances in the tree.
func (t *Tree) Count() int {
	n := 0
	var count func(in *Instance)
	count = func(in *Instance) {
		n++
		for _, c := range in.Children {
			count(c)
		}
	}
	count(t.root)
	return n
}

// Build lays out the composite type root and every type it reaches in a
// single left to right pass, producing the instance tree. The registry
// should have passed CheckComplete; a partial type reached here is reported
// as an incomplete declaration.
func Build(reg *Registry, root TypeHandle) (*Tree, error) {
	if reg.Get(root) == nil {
		return nil, errors.NotFound(errors.PhaseLayout, "root type", RootName)
	}

	b := &builder{
		reg:      reg,
		active:   make(map[TypeHandle]bool),
		byteData: make(map[TypeHandle]bool),
	}

	in := &Instance{Field: FieldRef{Owner: root, Index: RootField}}
	size, err := b.layout(in, root, Pos{}, nil)
	if err != nil {
		return nil, err
	}
	in.Size = size

	t := &Tree{reg: reg, root: in}
	Logger().Debug("instance tree built",
		zap.String("root", reg.TypeName(Ref(root))),
		zap.Stringer("size", size),
		zap.Int("instances", t.Count()))
	return t, nil
}

type builder struct {
	reg      *Registry
	active   map[TypeHandle]bool
	byteData map[TypeHandle]bool
}

// layout places the fields of type h into parent.Children starting at
// start and returns the extent they cover.
func (b *builder) layout(parent *Instance, h TypeHandle, start Pos, path []string) (Pos, error) {
	c := b.reg.Get(h)
	if c == nil {
		return Pos{}, errors.OutOfBounds(errors.PhaseLayout, path, int(h), b.reg.Len())
	}
	if c.Status != Complete {
		err := errors.IncompleteDeclaration(errors.PhaseLayout, c.Name)
		err.Path = path
		return Pos{}, err
	}
	if b.active[h] {
		return Pos{}, errors.RecursiveType(path, b.reg.TypeName(Ref(h)))
	}
	b.active[h] = true
	defer delete(b.active, h)

	cursor := start
	parent.Children = make([]*Instance, 0, len(c.Fields))

	for i, f := range c.Fields {
		fpath := fieldPath(path, f)
		if f.Length <= 0 {
			return Pos{}, errors.InvalidLength(errors.PhaseLayout, fpath, f.Length)
		}

		child := &Instance{
			Field:  FieldRef{Owner: h, Index: i},
			Offset: cursor,
		}

		switch f.Type.Kind {
		case KindByte:
			if !cursor.Aligned() {
				return Pos{}, errors.Unaligned(fpath, cursor.Bytes, cursor.Bits)
			}
			if f.Length > MaxBytes {
				return Pos{}, tooLarge(fpath)
			}
			child.Size = Pos{Bytes: f.Length}

		case KindBit:
			child.Size = BitPos(f.Length)

		case KindComposite:
			unit, err := b.layout(child, f.Type.Handle, cursor, fpath)
			if err != nil {
				return Pos{}, err
			}
			if unit.Total() == 0 {
				return Pos{}, errors.New(errors.PhaseLayout, errors.KindInvalidLength).
					Path(fpath...).
					TypeName(b.reg.TypeName(f.Type)).
					Value(0).
					Detail("type %s has zero size", b.reg.TypeName(f.Type)).
					Build()
			}
			// Element 2 onwards would start where the unit ends.
			if f.Length > 1 && !unit.Aligned() && b.hasByteData(f.Type.Handle) {
				next := cursor.Add(unit)
				return Pos{}, errors.Unaligned(fpath, next.Bytes, next.Bits)
			}
			size, ok := unit.CheckedMul(f.Length)
			if !ok {
				return Pos{}, tooLarge(fpath)
			}
			child.Size = size

		default:
			return Pos{}, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
				Path(fpath...).
				Detail("field has no type").
				Build()
		}

		next, ok := cursor.CheckedAdd(child.Size)
		if !ok {
			return Pos{}, tooLarge(fpath)
		}
		cursor = next
		parent.Children = append(parent.Children, child)
	}

	return BitPos(cursor.Total() - start.Total()), nil
}

// hasByteData reports whether type h contains a Byte field at any depth.
// Only called for types that already laid out, so h is acyclic.
func (b *builder) hasByteData(h TypeHandle) bool {
	if v, ok := b.byteData[h]; ok {
		return v
	}
	v := false
	for _, f := range b.reg.Get(h).Fields {
		if f.Type.Kind == KindByte || (f.Type.Kind == KindComposite && b.hasByteData(f.Type.Handle)) {
			v = true
			break
		}
	}
	b.byteData[h] = v
	return v
}

func tooLarge(path []string) *errors.Error {
	return errors.New(errors.PhaseLayout, errors.KindOutOfBounds).
		Path(path...).
		Detail("layout exceeds %d bytes", MaxBytes).
		Build()
}

func fieldPath(path []string, f Field) []string {
	name := f.Name
	if name == "" {
		name = "-"
	}
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}
