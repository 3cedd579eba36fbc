package token

import (
	"unicode"
)

type Type int

const (
	LBrace Type = iota
	RBrace
	LBracket
	RBracket
	Semicolon
	Dash
	Dot
	Ident
	Number
	Invalid
)

func (t Type) String() string {
	switch t {
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Semicolon:
		return "';'"
	case Dash:
		return "'-'"
	case Dot:
		return "'.'"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case Invalid:
		return "invalid character"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

var punct = map[rune]Type{
	'{': LBrace,
	'}': RBrace,
	'[': LBracket,
	']': RBracket,
	';': Semicolon,
	'-': Dash,
	'.': Dot,
}

func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment: '#' or '//'
		if r == '#' || (r == '/' && i+1 < len(runes) && runes[i+1] == '/') {
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		}

		if typ, ok := punct[r]; ok {
			tokens = append(tokens, Token{string(r), typ, line})
			continue
		}

		// Number: decimal or 0x hex
		if unicode.IsDigit(r) {
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == 'x' || runes[i] == 'X' ||
				(runes[i] >= 'a' && runes[i] <= 'f') || (runes[i] >= 'A' && runes[i] <= 'F')) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line})
			i--
			continue
		}

		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}

		tokens = append(tokens, Token{string(r), Invalid, line})
	}

	return tokens
}
