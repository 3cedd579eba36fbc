// Package mfterm is a terminal for MIFARE Classic tag images.
//
// Tag data is described by a small specification language that names the
// byte and bit fields of an image. Once a specification is loaded, fields
// are addressed by dotted paths and their data printed or copied.
//
// # Architecture Overview
//
//	mfterm/
//	├── errors/          Structured error types
//	├── spec/            Type registry, layout engine and path resolver
//	├── speclang/        Specification language lexer, parser and import
//	├── tag/             Tag image model, geometry, keys and dumps
//	├── reader/          PC/SC tag reader
//	└── cmd/mfterm/      Command line and interactive terminal
//
// # Specification
//
//	. {
//	  Manufacturer manufacturer
//	  Byte -[48]
//	  Sector sectors[15]
//	}
//
//	Manufacturer {
//	  Byte uid[4]
//	  Byte bcc
//	  Byte sak
//	  Byte atqa[2]
//	  Byte data[8]
//	}
//
//	Sector {
//	  Byte data[48]
//	  Byte keyA[6]
//	  Bit  ac[32]
//	  Byte keyB[6]
//	}
//
// Loading it and dumping a field:
//
//	ctx := spec.NewContext()
//	if _, err := speclang.ImportFile(ctx, "mifare1k.spec"); err != nil {
//	    return err
//	}
//	in, ok := ctx.Resolve(".sectors.keyA")
//	if !ok {
//	    return fmt.Errorf("no such field")
//	}
//	return img.Dump(os.Stdout, in.Offset, in.Size)
//
// # Layout Rules
//
// Fields are laid out in declaration order with no padding. Byte fields
// must start on a byte boundary; Bit fields may start anywhere. Arrays of
// composite types are stored as one template instance whose offsets are
// those of the first element.
package mfterm
