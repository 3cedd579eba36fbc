package spec

import (
	"fmt"
	"math"
)

// MaxBytes bounds every offset and extent so that Total never overflows.
const MaxBytes = math.MaxInt / 8

const maxBits = MaxBytes * 8

// Pos is a position or extent in the flat tag address space, split into
// whole bytes and a bit remainder. Bits is always in [0,8).
type Pos struct {
	Bytes int
	Bits  int
}

// BitPos converts a bit count into a Pos.
func BitPos(bits int) Pos {
	return Pos{Bytes: bits / 8, Bits: bits % 8}
}

// Total returns p as a single bit count.
func (p Pos) Total() int {
	return p.Bytes*8 + p.Bits
}

// Add returns p advanced by q, carrying bit overflow into bytes.
func (p Pos) Add(q Pos) Pos {
	bits := p.Bits + q.Bits
	return Pos{Bytes: p.Bytes + q.Bytes + bits/8, Bits: bits % 8}
}

// Mul returns p repeated n times, with carry.
func (p Pos) Mul(n int) Pos {
	bits := p.Bits * n
	return Pos{Bytes: p.Bytes*n + bits/8, Bits: bits % 8}
}

// CheckedAdd is Add that reports false when the result passes MaxBytes.
// Both operands must be non-negative and within MaxBytes.
func (p Pos) CheckedAdd(q Pos) (Pos, bool) {
	if q.Total() > maxBits-p.Total() {
		return Pos{}, false
	}
	return p.Add(q), true
}

// CheckedMul is Mul that reports false when the result passes MaxBytes.
// p must be within MaxBytes and n non-negative.
func (p Pos) CheckedMul(n int) (Pos, bool) {
	if t := p.Total(); t > 0 && n > maxBits/t {
		return Pos{}, false
	}
	return BitPos(p.Total() * n), true
}

// Aligned reports whether p falls on a byte boundary.
func (p Pos) Aligned() bool {
	return p.Bits == 0
}

func (p Pos) String() string {
	return fmt.Sprintf("[%d, %d]", p.Bytes, p.Bits)
}
