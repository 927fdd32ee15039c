package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType parses a type expression in the schema-language spelling produced
// by Type.String. Bare identifiers other than the primitives are resolved
// against set as an enum or a class.
//
// Grammar:
//
//	union   = postfix { "|" postfix }
//	postfix = primary { "[]" | "?" }
//	primary = ident | "map<string," union ">" | "(" union ")"
func ParseType(expr string, set *Set) (Type, error) {
	p := &typeParser{src: expr, set: set}
	t, err := p.union()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, fmt.Errorf("type %q: unexpected %q at offset %d", expr, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
	set *Set
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) union() (Type, error) {
	first, err := p.postfix()
	if err != nil {
		return Type{}, err
	}
	options := []Type{first}
	for p.consume("|") {
		next, err := p.postfix()
		if err != nil {
			return Type{}, err
		}
		options = append(options, next)
	}
	if len(options) == 1 {
		return first, nil
	}
	return Union(options...), nil
}

func (p *typeParser) postfix() (Type, error) {
	t, err := p.primary()
	if err != nil {
		return Type{}, err
	}
	for {
		switch {
		case p.consume("[]"):
			t = List(t)
		case p.consume("?"):
			t = Optional(t)
		default:
			return t, nil
		}
	}
}

func (p *typeParser) primary() (Type, error) {
	if p.consume("(") {
		t, err := p.union()
		if err != nil {
			return Type{}, err
		}
		if !p.consume(")") {
			return Type{}, fmt.Errorf("type %q: missing ')' at offset %d", p.src, p.pos)
		}
		return t, nil
	}

	name := p.ident()
	switch name {
	case "":
		return Type{}, fmt.Errorf("type %q: expected a type at offset %d", p.src, p.pos)
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "map":
		if !p.consume("<") || p.ident() != "string" || !p.consume(",") {
			return Type{}, fmt.Errorf("type %q: maps must be written map<string, T>", p.src)
		}
		elem, err := p.union()
		if err != nil {
			return Type{}, err
		}
		if !p.consume(">") {
			return Type{}, fmt.Errorf("type %q: missing '>' at offset %d", p.src, p.pos)
		}
		return Map(elem), nil
	}

	if _, ok := p.set.Enum(name); ok {
		return EnumRef(name), nil
	}
	if _, ok := p.set.Class(name); ok {
		return ClassRef(name), nil
	}
	return Type{}, fmt.Errorf("type %q: unknown type %q", p.src, name)
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}
