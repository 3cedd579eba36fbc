package spec

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	mferrors "github.com/wippyai/mfterm/errors"
)

// scenarioA registers Header { Byte magic[4] } and the root
// . { Header h; Bit flag[3]; <filler>; Byte pad[1] }. With aligned set,
// a five bit filler precedes pad so it starts on a byte boundary.
func scenarioA(t *testing.T, aligned bool) *Context {
	t.Helper()
	ctx := NewContext()
	reg := ctx.Registry()

	hdr := NewComposite("Header")
	hdr.AddField(NewField("magic", Byte, 4))
	hdr.Complete()
	h := mustRegister(t, reg, hdr)

	root := NewComposite(RootName)
	root.AddField(NewField("h", Ref(h), 1))
	root.AddField(NewField("flag", Bit, 3))
	if aligned {
		root.AddField(NewField("", Bit, 5))
	}
	root.AddField(NewField("pad", Byte, 1))
	root.Complete()
	if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
		t.Fatal(err)
	}
	return ctx
}

// tagRegistry declares a MIFARE-like layout mixing bit arrays, nested
// composites, fillers and arrays of composites.
func tagRegistry(t *testing.T) *Context {
	t.Helper()
	ctx := NewContext()
	reg := ctx.Registry()

	// Forward reference: Sector is used before its body is known.
	sector := mustRegister(t, reg, NewComposite("Sector"))

	flags := NewComposite("Flags")
	flags.AddField(NewField("a", Bit, 1))
	flags.AddField(NewField("b", Bit, 2))
	flags.AddField(NewField("", Bit, 5))
	flags.Complete()
	fh := mustRegister(t, reg, flags)

	tri := NewComposite("Tri")
	tri.AddField(NewField("x", Bit, 3))
	tri.Complete()
	th := mustRegister(t, reg, tri)

	s := reg.Get(sector)
	s.AddField(NewField("data", Byte, 48))
	s.AddField(NewField("keyA", Byte, 6))
	s.AddField(NewField("acl", Ref(fh), 3))
	s.AddField(NewField("gpb", Byte, 1))
	s.AddField(NewField("keyB", Byte, 6))
	s.Complete()

	root := NewComposite(RootName)
	root.AddField(NewField("uid", Byte, 4))
	root.AddField(NewField("bcc", Byte, 1))
	root.AddField(NewField("tri", Ref(th), 5))
	root.AddField(NewField("", Bit, 1))
	root.AddField(NewField("sectors", Ref(sector), 16))
	root.Complete()
	if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
		t.Fatal(err)
	}
	return ctx
}

type span struct {
	Path   string
	Offset Pos
	Size   Pos
}

func spans(tree *Tree) []span {
	var out []span
	tree.Walk(func(path string, in *Instance) bool {
		out = append(out, span{path, in.Offset, in.Size})
		return true
	})
	return out
}

func TestBuildScenarioAUnaligned(t *testing.T) {
	ctx := scenarioA(t, false)
	_, err := ctx.Build()

	var e *mferrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("Build error = %v, want *errors.Error", err)
	}
	if e.Phase != mferrors.PhaseLayout || e.Kind != mferrors.KindUnaligned {
		t.Errorf("error = %v, want layout/unaligned", e)
	}
	if diff := cmp.Diff([]string{"pad"}, e.Path); diff != "" {
		t.Errorf("error path mismatch (-want +got):\n%s", diff)
	}
	if e.Detail != "byte data at bit offset [4, 3]" {
		t.Errorf("Detail = %q", e.Detail)
	}
	if ctx.Tree() != nil {
		t.Error("failed build must not leave a tree behind")
	}
}

func TestBuildScenarioAAligned(t *testing.T) {
	ctx := scenarioA(t, true)
	tree, err := ctx.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []span{
		{".", Pos{0, 0}, Pos{6, 0}},
		{".h", Pos{0, 0}, Pos{4, 0}},
		{".h.magic", Pos{0, 0}, Pos{4, 0}},
		{".flag", Pos{4, 0}, Pos{0, 3}},
		{".pad", Pos{5, 0}, Pos{1, 0}},
	}
	if diff := cmp.Diff(want, spans(tree)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	filler := tree.Root().Children[2]
	if filler.Offset != (Pos{4, 3}) || filler.Size != (Pos{0, 5}) {
		t.Errorf("filler at %v size %v, want [4, 3] [0, 5]", filler.Offset, filler.Size)
	}
}

func TestBuildTagLayout(t *testing.T) {
	ctx := tagRegistry(t)
	tree, err := ctx.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []span{
		{".", Pos{0, 0}, Pos{1031, 0}},
		{".uid", Pos{0, 0}, Pos{4, 0}},
		{".bcc", Pos{4, 0}, Pos{1, 0}},
		{".tri", Pos{5, 0}, Pos{1, 7}},
		{".tri.x", Pos{5, 0}, Pos{0, 3}},
		{".sectors", Pos{7, 0}, Pos{1024, 0}},
		{".sectors.data", Pos{7, 0}, Pos{48, 0}},
		{".sectors.keyA", Pos{55, 0}, Pos{6, 0}},
		{".sectors.acl", Pos{61, 0}, Pos{3, 0}},
		{".sectors.acl.a", Pos{61, 0}, Pos{0, 1}},
		{".sectors.acl.b", Pos{61, 1}, Pos{0, 2}},
		{".sectors.gpb", Pos{64, 0}, Pos{1, 0}},
		{".sectors.keyB", Pos{65, 0}, Pos{6, 0}},
	}
	if diff := cmp.Diff(want, spans(tree)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	// One template subtree per array, not one per element.
	if got := tree.Count(); got != 15 {
		t.Errorf("Count = %d, want 15", got)
	}
}

func TestBuildLayoutProperties(t *testing.T) {
	ctx := tagRegistry(t)
	tree, err := ctx.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var check func(in *Instance)
	check = func(in *Instance) {
		if in.Offset.Bits < 0 || in.Offset.Bits >= 8 || in.Size.Bits < 0 || in.Size.Bits >= 8 {
			t.Errorf("bit component out of range: offset %v size %v", in.Offset, in.Size)
		}

		// Offsets strictly increase between siblings.
		for i := 1; i < len(in.Children); i++ {
			prev, cur := in.Children[i-1], in.Children[i]
			if prev.Offset.Total() >= cur.Offset.Total() {
				t.Errorf("sibling %d at %v not after sibling %d at %v", i, cur.Offset, i-1, prev.Offset)
			}
		}

		// The children cover exactly one unit of the field's type.
		f := tree.Field(in)
		if len(in.Children) > 0 {
			unit := 0
			for _, c := range in.Children {
				unit += c.Size.Total()
			}
			if got, want := in.Size.Total(), f.Length*unit; got != want {
				t.Errorf("%s size %d bits, want %d x %d", f.Name, got, f.Length, unit)
			}
		}
		switch f.Type.Kind {
		case KindByte:
			if in.Size.Total() != f.Length*8 {
				t.Errorf("byte field %s size %v", f.Name, in.Size)
			}
		case KindBit:
			if in.Size.Total() != f.Length {
				t.Errorf("bit field %s size %v", f.Name, in.Size)
			}
		}

		for _, c := range in.Children {
			check(c)
		}
	}
	check(tree.Root())
}

func TestBuildArrayOfUnalignedComposite(t *testing.T) {
	build := func(length int) error {
		ctx := NewContext()
		reg := ctx.Registry()

		odd := NewComposite("Odd")
		odd.AddField(NewField("a", Byte, 1))
		odd.AddField(NewField("b", Bit, 3))
		odd.Complete()
		oh := mustRegister(t, reg, odd)

		root := NewComposite(RootName)
		root.AddField(NewField("odd", Ref(oh), length))
		root.Complete()
		if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
			t.Fatal(err)
		}
		_, err := ctx.Build()
		return err
	}

	if err := build(1); err != nil {
		t.Errorf("single element: %v", err)
	}

	err := build(2)
	var e *mferrors.Error
	if !errors.As(err, &e) || e.Kind != mferrors.KindUnaligned {
		t.Fatalf("two elements: error = %v, want unaligned", err)
	}
	if e.Detail != "byte data at bit offset [1, 3]" {
		t.Errorf("Detail = %q", e.Detail)
	}
}

func TestBuildBitOnlyCompositeArray(t *testing.T) {
	ctx := NewContext()
	reg := ctx.Registry()

	nib := NewComposite("Nibble")
	nib.AddField(NewField("v", Bit, 4))
	nib.Complete()
	nh := mustRegister(t, reg, nib)

	root := NewComposite(RootName)
	root.AddField(NewField("lead", Bit, 2))
	root.AddField(NewField("nibbles", Ref(nh), 3))
	root.AddField(NewField("", Bit, 2))
	root.AddField(NewField("tail", Byte, 2))
	root.Complete()
	if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
		t.Fatal(err)
	}

	tree, err := ctx.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []span{
		{".", Pos{0, 0}, Pos{4, 0}},
		{".lead", Pos{0, 0}, Pos{0, 2}},
		{".nibbles", Pos{0, 2}, Pos{1, 4}},
		{".nibbles.v", Pos{0, 2}, Pos{0, 4}},
		{".tail", Pos{2, 0}, Pos{2, 0}},
	}
	if diff := cmp.Diff(want, spans(tree)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("recursive", func(t *testing.T) {
		ctx := NewContext()
		reg := ctx.Registry()
		node := NewComposite("Node")
		nh := mustRegister(t, reg, node)
		node.AddField(NewField("v", Byte, 1))
		node.AddField(NewField("next", Ref(nh), 1))
		node.Complete()

		root := NewComposite(RootName)
		root.AddField(NewField("head", Ref(nh), 1))
		root.Complete()
		if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
			t.Fatal(err)
		}

		_, err := ctx.Build()
		var e *mferrors.Error
		if !errors.As(err, &e) || e.Kind != mferrors.KindRecursiveType {
			t.Fatalf("error = %v, want recursive_type", err)
		}
		if diff := cmp.Diff([]string{"head", "next"}, e.Path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("zero_length", func(t *testing.T) {
		ctx := NewContext()
		reg := ctx.Registry()
		root := NewComposite(RootName)
		root.AddField(NewField("", Byte, 0))
		root.Complete()
		if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
			t.Fatal(err)
		}

		_, err := ctx.Build()
		var e *mferrors.Error
		if !errors.As(err, &e) || e.Kind != mferrors.KindInvalidLength {
			t.Fatalf("error = %v, want invalid_length", err)
		}
		if diff := cmp.Diff([]string{"-"}, e.Path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty_composite", func(t *testing.T) {
		ctx := NewContext()
		reg := ctx.Registry()
		empty := NewComposite("E")
		empty.Complete()
		eh := mustRegister(t, reg, empty)

		root := NewComposite(RootName)
		root.AddField(NewField("a", Ref(eh), 1))
		root.AddField(NewField("b", Byte, 1))
		root.Complete()
		if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
			t.Fatal(err)
		}

		_, err := ctx.Build()
		var e *mferrors.Error
		if !errors.As(err, &e) || e.Phase != mferrors.PhaseLayout || e.Kind != mferrors.KindInvalidLength {
			t.Fatalf("error = %v, want layout/invalid_length", err)
		}
		if diff := cmp.Diff([]string{"a"}, e.Path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
		if e.Detail != "type E has zero size" {
			t.Errorf("Detail = %q", e.Detail)
		}
	})

	t.Run("size_overflow", func(t *testing.T) {
		// A{Byte b[0x7fffffff]} B{A a[0x7fffffff]} C{B b[0x7fffffff]}
		ctx := NewContext()
		reg := ctx.Registry()
		a := NewComposite("A")
		a.AddField(NewField("b", Byte, 0x7fffffff))
		a.Complete()
		ah := mustRegister(t, reg, a)
		b := NewComposite("B")
		b.AddField(NewField("a", Ref(ah), 0x7fffffff))
		b.Complete()
		bh := mustRegister(t, reg, b)
		c := NewComposite("C")
		c.AddField(NewField("b", Ref(bh), 0x7fffffff))
		c.Complete()
		ch := mustRegister(t, reg, c)

		root := NewComposite(RootName)
		root.AddField(NewField("c", Ref(ch), 4))
		root.AddField(NewField("x", Byte, 1))
		root.Complete()
		if err := reg.SetRoot(mustRegister(t, reg, root)); err != nil {
			t.Fatal(err)
		}

		tree, err := ctx.Build()
		if tree != nil {
			t.Error("tree should be nil on overflow")
		}
		var e *mferrors.Error
		if !errors.As(err, &e) || e.Phase != mferrors.PhaseLayout || e.Kind != mferrors.KindOutOfBounds {
			t.Fatalf("error = %v, want layout/out_of_bounds", err)
		}
		if diff := cmp.Diff([]string{"c", "b", "a"}, e.Path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("byte_length_overflow", func(t *testing.T) {
		reg := NewRegistry()
		root := NewComposite(RootName)
		root.AddField(NewField("huge", Byte, MaxBytes+1))
		root.Complete()
		rh := mustRegister(t, reg, root)
		_, err := Build(reg, rh)
		target := &mferrors.Error{Phase: mferrors.PhaseLayout, Kind: mferrors.KindOutOfBounds}
		if !errors.Is(err, target) {
			t.Errorf("error = %v, want layout/out_of_bounds", err)
		}
	})

	t.Run("partial_reached_directly", func(t *testing.T) {
		reg := NewRegistry()
		ph := mustRegister(t, reg, NewComposite("Later"))
		root := NewComposite(RootName)
		root.AddField(NewField("x", Ref(ph), 1))
		root.Complete()
		rh := mustRegister(t, reg, root)

		_, err := Build(reg, rh)
		target := &mferrors.Error{Phase: mferrors.PhaseLayout, Kind: mferrors.KindIncompleteDeclaration}
		if !errors.Is(err, target) {
			t.Errorf("error = %v, want layout/incomplete_declaration", err)
		}
	})

	t.Run("unknown_root", func(t *testing.T) {
		if _, err := Build(NewRegistry(), 3); err == nil {
			t.Error("Build with unknown root should fail")
		}
	})

	t.Run("untyped_field", func(t *testing.T) {
		reg := NewRegistry()
		root := NewComposite(RootName)
		root.AddField(Field{Name: "x", Length: 1})
		root.Complete()
		rh := mustRegister(t, reg, root)
		if _, err := Build(reg, rh); err == nil {
			t.Error("field without type should fail")
		}
	})
}

func TestTreeField(t *testing.T) {
	ctx := scenarioA(t, true)
	tree, err := ctx.Build()
	if err != nil {
		t.Fatal(err)
	}

	root := tree.Root()
	if !root.IsRoot() {
		t.Fatal("root instance should report IsRoot")
	}
	rf := tree.Field(root)
	if rf.Name != RootName || rf.Length != 1 || rf.Type.Kind != KindComposite {
		t.Errorf("root field = %+v", rf)
	}
	if got := tree.Name(root.Children[0]); got != "h" {
		t.Errorf("Name = %q, want h", got)
	}
	if got := tree.Name(root.Children[2]); got != "" {
		t.Errorf("filler Name = %q, want empty", got)
	}
	if end := root.Children[3].End(); end != (Pos{6, 0}) {
		t.Errorf("pad End = %v, want [6, 0]", end)
	}
	if tree.Registry() != ctx.Registry() {
		t.Error("tree should reference its registry")
	}
}
