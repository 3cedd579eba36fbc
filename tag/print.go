package tag

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/spec"
)

// Print writes the blocks of a tag of the given size as a hex table, with
// a blank line between sectors.
func (t *Tag) Print(w io.Writer, size Size) error {
	return t.PrintBlocks(w, 0, BlockCount(size)-1)
}

// PrintBlocks writes blocks first through last inclusive.
func (t *Tag) PrintBlocks(w io.Writer, first, last int) error {
	if first < 0 || last >= MaxBlocks || first > last {
		return errors.OutOfBounds(errors.PhaseCommand, nil, last, MaxBlocks)
	}

	var b strings.Builder
	b.WriteString("xS  xB  00                   07 08                   0f\n")
	b.WriteString("-------------------------------------------------------\n")
	for block := first; block <= last; block++ {
		fmt.Fprintf(&b, "%02x  %02x  %s\n", BlockToSector(block), block, hexRow(t.Block(block)))
		if block < last && IsTrailerBlock(block) {
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// PrintKeys writes key A and key B of every sector on a tag of size.
func (t *Tag) PrintKeys(w io.Writer, size Size) error {
	var b strings.Builder
	b.WriteString("xS  xB  KeyA          KeyB\n")
	b.WriteString("----------------------------------\n")
	for _, h := range SectorHeaders(size) {
		tr := BlockToTrailer(h)
		if tr == largeStart+largeSectorBlocks-1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%02x  %02x  %s  %s\n", BlockToSector(h), tr, t.Key(KeyA, h), t.Key(KeyB, h))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Dump writes the tag data in the bit range [offset, offset+size). A
// leading partial byte and trailing bits are shown as bit masks, whole
// bytes as hex rows aligned to their block position.
func (t *Tag) Dump(w io.Writer, offset, size spec.Pos) error {
	if end := offset.Add(size); end.Total() > 8*len(t.data) {
		return errors.OutOfBounds(errors.PhaseCommand, nil, end.Bytes, len(t.data))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Offset: %v Length: %v\n", offset, size)

	byteOff, bits := offset.Bytes, size.Total()

	// Partial first byte.
	if offset.Bits != 0 && bits > 0 {
		last := min(offset.Bits+bits-1, 7)
		b.WriteString(bitMask(t.data[byteOff], offset.Bits, last))
		b.WriteByte('\n')
		bits -= last - offset.Bits + 1
		byteOff++
	}

	// Whole bytes, one row per block.
	for n := bits / 8; n > 0; {
		col := byteOff % BlockSize
		k := min(n, BlockSize-col)
		b.WriteString(hexRowRange(t.data[byteOff-col:byteOff-col+BlockSize], col, col+k))
		b.WriteByte('\n')
		byteOff += k
		n -= k
	}
	bits %= 8

	// Trailing bits.
	if bits > 0 {
		b.WriteString(bitMask(t.data[byteOff], 0, bits-1))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Range returns the bytes covering the bit range [offset, offset+size).
func (t *Tag) Range(offset, size spec.Pos) ([]byte, error) {
	end := offset.Add(size)
	last := end.Bytes
	if end.Bits != 0 {
		last++
	}
	if last > len(t.data) {
		return nil, errors.OutOfBounds(errors.PhaseCommand, nil, last, len(t.data))
	}
	out := make([]byte, last-offset.Bytes)
	copy(out, t.data[offset.Bytes:last])
	return out, nil
}

// bitMask renders bits first..last of v, least significant first, with
// '-' outside the range.
func bitMask(v byte, first, last int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte(' ')
		}
		switch {
		case i < first || i > last:
			b.WriteByte('-')
		case v&(1<<i) != 0:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	b.WriteByte(']')
	return b.String()
}

func hexRow(block []byte) string {
	return hexRowRange(block, 0, len(block))
}

// hexRowRange renders block with cells outside [from, to) as "--".
func hexRowRange(block []byte, from, to int) string {
	cells := make([]string, len(block))
	for i := range block {
		if i < from || i >= to {
			cells[i] = "--"
			continue
		}
		cells[i] = hex.EncodeToString(block[i : i+1])
	}
	return strings.Join(cells, " ")
}
