// Package speclang parses tag data specifications and imports them into a
// spec.Context.
//
// A specification is a list of type declarations. The type named '.' is
// the root: the layout of the whole tag image.
//
//	# MIFARE Classic 1k
//	. {
//	  Block manufacturer
//	  Sector sectors[16]
//	}
//
//	Sector {
//	  Byte data[48]
//	  Trailer trailer
//	}
//
//	Trailer {
//	  Byte keyA[6]
//	  Bit  c[12]        // access conditions
//	  Bit  -[12]        // inverted copy, not addressable
//	  Byte gpb
//	  Byte keyB[6]
//	}
//
// Fields are `Type name[length]`, with `[length]` optional (defaults to 1)
// and an optional trailing ';'. A '-' in place of the name declares filler.
// Byte and Bit (or byte and bit) are the primitive types. A `{ ... }` in
// type position declares an anonymous inline type. Types may be used
// before they are declared; every used type must be declared by the end
// of the source. Comments start with '#' or '//'.
//
// Import runs the whole pipeline: clear the context, parse, check that
// every type is complete, check the root, build the instance tree.
package speclang
