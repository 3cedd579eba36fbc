package tag

import (
	"fmt"
	"os"
	"strings"

	"github.com/wippyai/mfterm/errors"
)

const (
	BlockSize = 16
	MaxBlocks = 256
)

// Size is the byte capacity of a tag.
type Size int

const (
	Size1K Size = 1024
	Size4K Size = 4096
)

func (s Size) String() string {
	switch s {
	case Size1K:
		return "1k"
	case Size4K:
		return "4k"
	}
	return fmt.Sprintf("Size(%d)", int(s))
}

// ParseSize parses "1k" or "4k".
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(s) {
	case "1k":
		return Size1K, nil
	case "4k":
		return Size4K, nil
	}
	return 0, errors.InvalidInput(errors.PhaseCommand, fmt.Sprintf("unknown tag size %q, want 1k or 4k", s))
}

// Tag is a full 4k tag image.
type Tag struct {
	data [Size4K]byte
}

// New returns a zeroed tag image.
func New() *Tag {
	return &Tag{}
}

// Bytes exposes the raw image.
func (t *Tag) Bytes() []byte {
	return t.data[:]
}

// Block returns the 16 bytes of block n, aliasing the image. n must be in
// [0, MaxBlocks); Block panics otherwise. Set validates its block number.
func (t *Tag) Block(n int) []byte {
	if n < 0 || n >= MaxBlocks {
		panic(errors.OutOfBounds(errors.PhaseCommand, nil, n, MaxBlocks))
	}
	lo, hi := n*BlockSize, (n+1)*BlockSize
	return t.data[lo:hi:hi]
}

// Clear zeroes the whole image.
func (t *Tag) Clear() {
	t.data = [Size4K]byte{}
}

// Set writes data into the image starting at byte offset of block.
func (t *Tag) Set(block, offset int, data []byte) error {
	if block < 0 || block >= MaxBlocks {
		return errors.OutOfBounds(errors.PhaseCommand, nil, block, MaxBlocks)
	}
	if offset < 0 || offset >= BlockSize {
		return errors.OutOfBounds(errors.PhaseCommand, nil, offset, BlockSize)
	}
	start := block*BlockSize + offset
	if start+len(data) > len(t.data) {
		return errors.OutOfBounds(errors.PhaseCommand, nil, start+len(data), len(t.data))
	}
	copy(t.data[start:], data)
	return nil
}

// Load reads a tag image file. Files of 1024 bytes fill the 1k part of the
// image and zero the rest.
func Load(path string) (*Tag, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "read "+path, err)
	}
	if len(raw) != int(Size1K) && len(raw) != int(Size4K) {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(len(raw)).
			Detail("%s: %d bytes, want %d or %d", path, len(raw), Size1K, Size4K).
			Build()
	}
	t := New()
	copy(t.data[:], raw)
	return t, nil
}

// LoadAuth reads a tag image file and keeps only its trailer blocks.
func LoadAuth(path string) (*Tag, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	t.StripNonAuth()
	return t, nil
}

// Save writes the full 4k image to path.
func (t *Tag) Save(path string) error {
	if err := os.WriteFile(path, t.data[:], 0o644); err != nil {
		return errors.IO(errors.PhaseLoad, "write "+path, err)
	}
	return nil
}

// ImportAuth replaces t with the trailer blocks of src.
func (t *Tag) ImportAuth(src *Tag) {
	t.data = src.data
	t.StripNonAuth()
}

// StripNonAuth zeroes every block that is not a sector trailer.
func (t *Tag) StripNonAuth() {
	for b := 0; b < MaxBlocks; b++ {
		if !IsTrailerBlock(b) {
			clear(t.Block(b))
		}
	}
}
