package parser

import (
	"strconv"

	"github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/spec"
	"github.com/wippyai/mfterm/speclang/internal/token"
)

// Parser turns spec tokens into registry entries. Type names used before
// their body are registered as partial placeholders and completed when the
// body is parsed.
type Parser struct {
	reg     *spec.Registry
	defined map[spec.TypeHandle]int
	tokens  []token.Token
	pos     int
}

func New(tokens []token.Token, reg *spec.Registry) *Parser {
	return &Parser{
		reg:     reg,
		tokens:  tokens,
		defined: make(map[spec.TypeHandle]int),
	}
}

// Parse consumes every declaration.
func (p *Parser) Parse() error {
	for p.peek() != nil {
		if err := p.parseDecl(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) line() int {
	if t := p.peek(); t != nil {
		return t.Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 1
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	line := p.line()
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(line, "unexpected end of input, expected %v", typ)
	}
	if t.Type != typ {
		return nil, errors.Syntax(t.Line, "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

// parseDecl handles `Name { fields }` and `. { fields }`.
func (p *Parser) parseDecl() error {
	t := p.next()
	var name string
	switch t.Type {
	case token.Ident:
		if isPrimitive(t.Value) {
			return errors.Syntax(t.Line, "cannot redeclare primitive type %s", t.Value)
		}
		name = t.Value
	case token.Dot:
		name = spec.RootName
	default:
		return errors.Syntax(t.Line, "expected type name, got %q", t.Value)
	}

	h, err := p.named(name)
	if err != nil {
		return err
	}
	if prev, ok := p.defined[h]; ok {
		err := errors.DuplicateName(errors.PhaseParse, name)
		err.Line = t.Line
		err.Detail = "already declared on line " + strconv.Itoa(prev)
		return err
	}
	p.defined[h] = t.Line

	if name == spec.RootName {
		if err := p.reg.SetRoot(h); err != nil {
			return err
		}
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return err
	}
	return p.parseBody(h)
}

// parseBody parses fields up to the closing brace and completes type h.
func (p *Parser) parseBody(h spec.TypeHandle) error {
	c := p.reg.Get(h)
	for {
		t := p.peek()
		if t == nil {
			return errors.Syntax(p.line(), "unexpected end of input in body of %s", p.reg.TypeName(spec.Ref(h)))
		}
		if t.Type == token.RBrace {
			p.next()
			if len(c.Fields) == 0 {
				name := p.reg.TypeName(spec.Ref(h))
				return errors.New(errors.PhaseParse, errors.KindInvalidLength).
					TypeName(name).
					Line(t.Line).
					Value(0).
					Detail("type %s has no fields", name).
					Build()
			}
			c.Complete()
			return nil
		}
		f, err := p.parseField(c)
		if err != nil {
			return err
		}
		c.AddField(f)
	}
}

// parseField handles `Type name[len];`, `Type -[len]` and `{ ... } name`.
func (p *Parser) parseField(owner *spec.Composite) (spec.Field, error) {
	ref, err := p.parseTypeRef()
	if err != nil {
		return spec.Field{}, err
	}

	t := p.next()
	if t == nil {
		return spec.Field{}, errors.Syntax(p.line(), "unexpected end of input, expected field name")
	}
	var name string
	switch t.Type {
	case token.Ident:
		name = t.Value
		if _, _, dup := owner.Field(name); dup {
			return spec.Field{}, errors.Syntax(t.Line, "duplicate field %q", name)
		}
	case token.Dash:
	default:
		return spec.Field{}, errors.Syntax(t.Line, "expected field name or '-', got %q", t.Value)
	}

	length := 1
	if nt := p.peek(); nt != nil && nt.Type == token.LBracket {
		p.next()
		length, err = p.parseLength(name)
		if err != nil {
			return spec.Field{}, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return spec.Field{}, err
		}
	}

	if nt := p.peek(); nt != nil && nt.Type == token.Semicolon {
		p.next()
	}

	return spec.NewField(name, ref, length), nil
}

func (p *Parser) parseTypeRef() (spec.TypeRef, error) {
	t := p.next()
	if t == nil {
		return spec.TypeRef{}, errors.Syntax(p.line(), "unexpected end of input, expected type")
	}
	switch t.Type {
	case token.Ident:
		switch t.Value {
		case "Byte", "byte":
			return spec.Byte, nil
		case "Bit", "bit":
			return spec.Bit, nil
		}
		h, err := p.named(t.Value)
		if err != nil {
			return spec.TypeRef{}, err
		}
		return spec.Ref(h), nil

	case token.LBrace:
		// Inline anonymous type, complete once its body closes.
		h, err := p.reg.Register(spec.NewComposite(""))
		if err != nil {
			return spec.TypeRef{}, err
		}
		if err := p.parseBody(h); err != nil {
			return spec.TypeRef{}, err
		}
		return spec.Ref(h), nil

	default:
		return spec.TypeRef{}, errors.Syntax(t.Line, "expected type, got %q", t.Value)
	}
}

func (p *Parser) parseLength(field string) (int, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	base, digits := 10, t.Value
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		base, digits = 16, digits[2:]
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, errors.Syntax(t.Line, "invalid array length %q", t.Value)
	}
	if n <= 0 {
		e := errors.InvalidLength(errors.PhaseParse, nil, int(n))
		if field != "" {
			e.Path = []string{field}
		}
		e.Line = t.Line
		return 0, e
	}
	return int(n), nil
}

// named returns the handle for a type name, registering a partial
// placeholder for names not seen before.
func (p *Parser) named(name string) (spec.TypeHandle, error) {
	if h, ok := p.reg.Lookup(name); ok {
		return h, nil
	}
	return p.reg.Register(spec.NewComposite(name))
}

func isPrimitive(name string) bool {
	switch name {
	case "Byte", "byte", "Bit", "bit":
		return true
	}
	return false
}
