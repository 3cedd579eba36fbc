package main

import (
	"context"
	"io"

	"github.com/atotto/clipboard"

	"github.com/wippyai/mfterm/reader"
	"github.com/wippyai/mfterm/spec"
	"github.com/wippyai/mfterm/tag"
)

// tagReader is the part of *reader.Reader the read command needs.
type tagReader interface {
	ReadTag(ctx context.Context, auth *tag.Tag, kt tag.KeyType, size tag.Size) (*reader.Result, error)
	Close() error
}

// session is the state commands operate on.
type session struct {
	out  io.Writer
	spec *spec.Context
	tag  *tag.Tag
	auth *tag.Tag
	size tag.Size
	quit bool

	readerName string
	openReader func(ctx context.Context, name string) (tagReader, error)
	copyText   func(string) error
}

func newSession(out io.Writer) *session {
	return &session{
		out:  out,
		spec: spec.NewContext(),
		tag:  tag.New(),
		auth: tag.New(),
		size: tag.Size1K,
		openReader: func(ctx context.Context, name string) (tagReader, error) {
			return reader.Open(ctx, name)
		},
		copyText: clipboard.WriteAll,
	}
}
