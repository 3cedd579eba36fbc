package speclang

import (
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/spec"
	"github.com/wippyai/mfterm/speclang/internal/parser"
	"github.com/wippyai/mfterm/speclang/internal/token"
)

// Import replaces the specification held by ctx with the one in source and
// builds its instance tree. On any failure ctx is left empty.
func Import(ctx *spec.Context, source string) (*spec.Tree, error) {
	ctx.Clear()

	tokens := token.Tokenize(source)
	if err := parser.New(tokens, ctx.Registry()).Parse(); err != nil {
		ctx.Clear()
		return nil, err
	}

	tree, err := ctx.Build()
	if err != nil {
		ctx.Clear()
		return nil, err
	}

	Logger().Debug("specification imported",
		zap.Int("types", ctx.Registry().Len()),
		zap.Stringer("size", tree.Root().Size))
	return tree, nil
}

// ImportFile reads a specification file and imports it into ctx.
func ImportFile(ctx *spec.Context, path string) (*spec.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "read "+path, err)
	}
	return Import(ctx, string(data))
}
