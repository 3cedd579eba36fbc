// Package spec is the layout engine for tag data specifications.
//
// A specification declares composite types made of ordered fields. Each
// field is a fixed-length array of Byte, Bit or another composite type.
// The engine turns the declared type graph into an instance tree where
// every field carries its offset and size in a flat byte/bit address
// space, and resolves dotted paths against that tree.
//
// # Pipeline
//
//   - Registry: composite types keyed by name, forward references held as
//     Partial placeholders until their body is supplied.
//   - CheckComplete: the gate that must pass before layout.
//   - Build: a single left to right pass carrying a byte/bit cursor.
//   - Tree.Resolve / Tree.ResolvePartial: path addressing and completion.
//   - PrintTypes / PrintInstances: diagnostics.
//
// # Usage
//
//	ctx := spec.NewContext()
//	reg := ctx.Registry()
//	hdr := spec.NewComposite("Header")
//	hdr.AddField(spec.NewField("magic", spec.Byte, 4))
//	hdr.Complete()
//	h, _ := reg.Register(hdr)
//	...
//	tree, err := ctx.Build()
//	in, ok := tree.Resolve(".h.magic")
//
// Arrays of composites are laid out once: the field keeps a single element
// subtree and its size accounts for every element. Byte data must start on
// a byte boundary; Build reports anything else as an unaligned layout.
package spec
