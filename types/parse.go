package types

import (
	"fmt"
	"strings"
)

// Parse parses the textual form of a type descriptor, e.g. "String", "Array[Integer]", or
// "Hash[String,Hash[String,String]]". A panic is raised when the string cannot be parsed.
func Parse(str string) Type {
	p := &parser{str: str}
	t := p.parseType()
	p.skipWhite()
	if p.pos < len(p.str) {
		panic(p.failure(`unexpected characters after type`))
	}
	return t
}

type parser struct {
	str string
	pos int
}

func (p *parser) failure(reason string) error {
	return fmt.Errorf(`unable to parse type '%s': %s at position %d`, p.str, reason, p.pos)
}

func (p *parser) skipWhite() {
	for p.pos < len(p.str) && (p.str[p.pos] == ' ' || p.str[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) identifier() string {
	p.skipWhite()
	s := p.pos
	for p.pos < len(p.str) {
		c := p.str[p.pos]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			break
		}
		p.pos++
	}
	if s == p.pos {
		panic(p.failure(`expected a type name`))
	}
	return p.str[s:p.pos]
}

func (p *parser) delimiter(c byte) bool {
	p.skipWhite()
	if p.pos < len(p.str) && p.str[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseType() Type {
	name := p.identifier()
	var params []Type
	if p.delimiter('[') {
		params = append(params, p.parseType())
		for p.delimiter(',') {
			params = append(params, p.parseType())
		}
		if !p.delimiter(']') {
			panic(p.failure(`expected ']'`))
		}
	}
	return p.create(name, params)
}

func (p *parser) create(name string, params []Type) Type {
	simple := func(t Type) Type {
		if len(params) != 0 {
			panic(p.failure(fmt.Sprintf(`type %s does not accept parameters`, name)))
		}
		return t
	}
	switch strings.ToLower(name) {
	case `any`:
		return simple(Any)
	case `undef`:
		return simple(Undef)
	case `boolean`:
		return simple(Boolean)
	case `string`:
		return simple(String)
	case `integer`:
		return simple(Integer)
	case `float`:
		return simple(Float)
	case `numeric`:
		return simple(Numeric)
	case `scalar`:
		return simple(Scalar)
	case `data`:
		return simple(Data)
	case `optional`:
		if len(params) != 1 {
			panic(p.failure(`type Optional requires exactly one parameter`))
		}
		return Optional(params[0])
	case `array`:
		switch len(params) {
		case 0:
			return ArrayOf(Any)
		case 1:
			return ArrayOf(params[0])
		}
		panic(p.failure(`type Array accepts at most one parameter`))
	case `hash`:
		switch len(params) {
		case 0:
			return HashOf(Any, Any)
		case 2:
			return HashOf(params[0], params[1])
		}
		panic(p.failure(`type Hash requires zero or two parameters`))
	default:
		panic(p.failure(fmt.Sprintf(`unknown type '%s'`, name)))
	}
}
