package speclang

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	mferrors "github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/spec"
)

const scenarioA = `
Header {
  Byte magic[4]
}

. {
  Header h
  Bit flag[3]
  Bit -[5]
  Byte pad
}
`

const mifare1k = `
# MIFARE Classic 1k
. {
  Manufacturer manufacturer
  Byte -[32]
  Sector0Trailer trailer0
  Sector sectors[15]
}

Manufacturer {
  Byte uid[4]
  Byte bcc
  Byte sak
  Byte atqa[2]
  Byte data[8]
}

Sector0Trailer { Trailer t }

Sector {
  Byte data[48]
  Trailer trailer
}

Trailer {
  Byte keyA[6]
  { Bit c1[4]; Bit c2[4]; Bit c3[4] } ac
  Bit -[12]
  Byte gpb
  Byte keyB[6]
}
`

func TestImportScenarioA(t *testing.T) {
	ctx := spec.NewContext()
	tree, err := Import(ctx, scenarioA)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := tree.Root().Size; got != (spec.Pos{Bytes: 6}) {
		t.Errorf("root size = %v, want [6, 0]", got)
	}
	in, ok := ctx.Resolve(".h.magic")
	if !ok || in.Offset != (spec.Pos{}) || in.Size != (spec.Pos{Bytes: 4}) {
		t.Errorf(".h.magic = %+v, %v", in, ok)
	}
	pad, ok := ctx.Resolve(".pad")
	if !ok || pad.Offset != (spec.Pos{Bytes: 5}) {
		t.Errorf(".pad = %+v, %v", pad, ok)
	}
}

func TestImportMifare1k(t *testing.T) {
	ctx := spec.NewContext()
	tree, err := Import(ctx, mifare1k)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := tree.Root().Size; got != (spec.Pos{Bytes: 1024}) {
		t.Errorf("root size = %v, want [1024, 0]", got)
	}

	tests := []struct {
		path   string
		offset spec.Pos
		size   spec.Pos
	}{
		{".manufacturer.uid", spec.Pos{Bytes: 0}, spec.Pos{Bytes: 4}},
		{".manufacturer.data", spec.Pos{Bytes: 8}, spec.Pos{Bytes: 8}},
		{".trailer0.t.keyB", spec.Pos{Bytes: 58}, spec.Pos{Bytes: 6}},
		{".trailer0.t.ac.c2", spec.Pos{Bytes: 54, Bits: 4}, spec.Pos{Bits: 4}},
		{".sectors", spec.Pos{Bytes: 64}, spec.Pos{Bytes: 960}},
		{".sectors.trailer.keyA", spec.Pos{Bytes: 112}, spec.Pos{Bytes: 6}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			in, ok := ctx.Resolve(tc.path)
			if !ok {
				t.Fatalf("%s did not resolve", tc.path)
			}
			if in.Offset != tc.offset || in.Size != tc.size {
				t.Errorf("%s = %v %v, want %v %v", tc.path, in.Offset, in.Size, tc.offset, tc.size)
			}
		})
	}

	want := []string{".sectors.trailer.keyA", ".sectors.trailer.keyB"}
	if diff := cmp.Diff(want, ctx.Complete(".sectors.trailer.k")); diff != "" {
		t.Errorf("Complete mismatch (-want +got):\n%s", diff)
	}
}

func TestImportFailureClearsContext(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		phase mferrors.Phase
		kind  mferrors.Kind
	}{
		{"incomplete", ". { Missing m }", mferrors.PhaseValidate, mferrors.KindIncompleteDeclaration},
		{"no root", "A { Byte b }", mferrors.PhaseValidate, mferrors.KindRootTypeMissing},
		{"syntax", ". { Byte }", mferrors.PhaseParse, mferrors.KindSyntax},
		{"unaligned", ". { Bit f[3]; Byte b }", mferrors.PhaseLayout, mferrors.KindUnaligned},
		{"recursive", ". { A a }\nA { A inner }", mferrors.PhaseLayout, mferrors.KindRecursiveType},
		{"empty type", "E { }\n. { E a; Byte b }", mferrors.PhaseParse, mferrors.KindInvalidLength},
		{"size overflow", "A { Byte b[0x7fffffff] }\nB { A a[0x7fffffff] }\nC { B b[0x7fffffff] }\n. { C c[4]; Byte x }",
			mferrors.PhaseLayout, mferrors.KindOutOfBounds},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := spec.NewContext()
			if _, err := Import(ctx, scenarioA); err != nil {
				t.Fatalf("Import: %v", err)
			}

			_, err := Import(ctx, tc.src)
			target := &mferrors.Error{Phase: tc.phase, Kind: tc.kind}
			if !errors.Is(err, target) {
				t.Fatalf("Import error = %v, want %s/%s", err, tc.phase, tc.kind)
			}
			if ctx.Tree() != nil || ctx.Registry().Len() != 0 {
				t.Error("failed import should leave the context empty")
			}
			if _, ok := ctx.Resolve(".h"); ok {
				t.Error("previous specification still resolvable")
			}
		})
	}
}

func TestImportReplacesPrevious(t *testing.T) {
	ctx := spec.NewContext()
	if _, err := Import(ctx, scenarioA); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(ctx, ". { Byte only[2] }"); err != nil {
		t.Fatal(err)
	}
	if _, ok := ctx.Resolve(".h"); ok {
		t.Error("old root field still resolvable")
	}
	if _, ok := ctx.Resolve(".only"); !ok {
		t.Error("new root field not resolvable")
	}
	if ctx.Registry().Len() != 1 {
		t.Errorf("Len = %d, want 1", ctx.Registry().Len())
	}
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tag.spec")
	if err := os.WriteFile(path, []byte(scenarioA), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := spec.NewContext()
	if _, err := ImportFile(ctx, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if _, ok := ctx.Resolve(".flag"); !ok {
		t.Error(".flag did not resolve")
	}

	_, err := ImportFile(ctx, filepath.Join(t.TempDir(), "missing.spec"))
	target := &mferrors.Error{Phase: mferrors.PhaseLoad, Kind: mferrors.KindIO}
	if !errors.Is(err, target) {
		t.Errorf("ImportFile error = %v, want load/io", err)
	}
}
