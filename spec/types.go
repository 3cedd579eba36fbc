package spec

// Kind discriminates the three type categories of the specification language.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindByte
	KindBit
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "Byte"
	case KindBit:
		return "Bit"
	case KindComposite:
		return "composite"
	}
	return "invalid"
}

// TypeHandle addresses a composite type in a Registry.
type TypeHandle uint32

// TypeRef is a reference to a type: one of the two primitives, or a
// registered composite identified by its handle. TypeRefs compare with ==.
type TypeRef struct {
	Kind   Kind
	Handle TypeHandle
}

// The primitive types.
var (
	Byte = TypeRef{Kind: KindByte}
	Bit  = TypeRef{Kind: KindBit}
)

// Ref returns a reference to the composite type h.
func Ref(h TypeHandle) TypeRef {
	return TypeRef{Kind: KindComposite, Handle: h}
}

// IsPrimitive reports whether r is Byte or Bit.
func (r TypeRef) IsPrimitive() bool {
	return r.Kind == KindByte || r.Kind == KindBit
}

// Status is the declaration state of a composite type.
type Status uint8

const (
	// Partial marks a type referenced before its body was seen.
	Partial Status = iota
	// Complete marks a type whose field list has been supplied.
	Complete
)

func (s Status) String() string {
	if s == Complete {
		return "complete"
	}
	return "partial"
}

// Field is a named use of a type as a fixed-length array. An empty Name
// marks an anonymous filler that takes up space but cannot be addressed.
// Length 1 is the plain scalar case.
type Field struct {
	Name   string
	Type   TypeRef
	Length int
}

// NewField creates a field. Use an empty name for filler fields.
func NewField(name string, t TypeRef, length int) Field {
	return Field{Name: name, Type: t, Length: length}
}

// IsFiller reports whether f is an anonymous filler.
func (f Field) IsFiller() bool {
	return f.Name == ""
}

// AppendField appends f to the end of list. Field order is layout order.
func AppendField(list []Field, f Field) []Field {
	return append(list, f)
}

// Composite is a user declared type made up of an ordered field list.
// An empty Name denotes an anonymous type, usable only inline.
type Composite struct {
	Name   string
	Fields []Field
	Status Status
}

// NewComposite creates a partially declared composite type.
func NewComposite(name string) *Composite {
	return &Composite{Name: name, Status: Partial}
}

// Anonymous reports whether c has no name.
func (c *Composite) Anonymous() bool {
	return c.Name == ""
}

// AddField appends f to the field list of c.
func (c *Composite) AddField(f Field) {
	c.Fields = AppendField(c.Fields, f)
}

// Complete marks the declaration of c as finished.
func (c *Composite) Complete() {
	c.Status = Complete
}

// Field returns the first field named name and its index. Fillers never match.
func (c *Composite) Field(name string) (Field, int, bool) {
	if name == "" {
		return Field{}, -1, false
	}
	for i, f := range c.Fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return Field{}, -1, false
}
