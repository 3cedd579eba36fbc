package tag

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/wippyai/mfterm/errors"
)

// KeyType selects key A or key B of a sector trailer.
type KeyType byte

const (
	KeyA KeyType = 'a'
	KeyB KeyType = 'b'
)

func (k KeyType) String() string {
	switch k {
	case KeyA:
		return "A"
	case KeyB:
		return "B"
	}
	return fmt.Sprintf("KeyType(%#x)", byte(k))
}

// ParseKeyType accepts "a", "A", "b" or "B".
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "a":
		return KeyA, nil
	case "b":
		return KeyB, nil
	}
	return 0, errors.InvalidInput(errors.PhaseCommand, fmt.Sprintf("unknown key type %q, want A or B", s))
}

// Trailer byte ranges.
const (
	KeySize      = 6
	keyAOffset   = 0
	accessOffset = 6
	keyBOffset   = 10
)

// Key is a 48 bit MIFARE Classic sector key.
type Key [KeySize]byte

// DefaultKey is the factory transport key.
var DefaultKey = Key{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// ParseKey parses 12 hex digits.
func ParseKey(s string) (Key, error) {
	var k Key
	if len(s) != 2*KeySize {
		return k, errors.InvalidInput(errors.PhaseCommand, fmt.Sprintf("key %q must be %d hex digits", s, 2*KeySize))
	}
	if _, err := hex.Decode(k[:], []byte(s)); err != nil {
		return k, errors.Wrap(errors.PhaseCommand, errors.KindInvalidInput, err, fmt.Sprintf("key %q", s))
	}
	return k, nil
}

func keyOffset(kt KeyType) int {
	if kt == KeyB {
		return keyBOffset
	}
	return keyAOffset
}

// Key returns the key of type kt from the trailer of the sector holding block.
func (t *Tag) Key(kt KeyType, block int) Key {
	var k Key
	tr := t.Block(BlockToTrailer(block))
	off := keyOffset(kt)
	copy(k[:], tr[off:off+KeySize])
	return k
}

// SetKey stores key in the trailer of the sector holding block.
func (t *Tag) SetKey(kt KeyType, block int, key Key) {
	tr := t.Block(BlockToTrailer(block))
	copy(tr[keyOffset(kt):], key[:])
}

// AccessBits returns the access condition bytes and general purpose byte
// of the sector holding block.
func (t *Tag) AccessBits(block int) [4]byte {
	var ac [4]byte
	copy(ac[:], t.Block(BlockToTrailer(block))[accessOffset:keyBOffset])
	return ac
}
