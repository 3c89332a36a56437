package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// A Key is a parsed version of the possibly dot-separated name to look up. The parts of a
// key are strings or integers. Integer parts index into arrays, string parts into hashes.
// Segments can be quoted with single or double quotes to suppress both the dot separator
// and integer interpretation.
type Key interface {
	// Dig returns the result of using this key to dig into the given value. Nil is returned
	// unless the dig was a success
	Dig(ic Invocation, v dgo.Value) dgo.Value

	// Bury is the opposite of Dig. It returns the value that would yield the given value when
	// dug into with this key. A key with one part returns the value itself, otherwise a
	// nested chain of single entry hashes is returned.
	Bury(value dgo.Value) dgo.Value

	// Parts returns the parts of this key. Each part is either a string or an int
	Parts() []interface{}

	// Root returns the first part
	Root() string

	// Source returns the string that this key was created from
	Source() string
}

type key struct {
	source string
	parts  []interface{}
}

// NewKey parses the given string into a Key. An unparsable string results in a panic.
func NewKey(str string) Key {
	return &key{source: str, parts: splitKey(str)}
}

func splitKey(str string) []interface{} {
	var parts []interface{}
	sb := strings.Builder{}
	quote := rune(0)
	quoted := false

	endPart := func() {
		s := sb.String()
		sb.Reset()
		if quoted {
			quoted = false
			parts = append(parts, s)
			return
		}
		if s == `` {
			panic(fmt.Errorf(`key '%s' contains an empty segment`, str))
		}
		if i, err := strconv.Atoi(s); err == nil {
			if len(parts) == 0 {
				panic(fmt.Errorf(`key '%s' first segment cannot be an index`, str))
			}
			parts = append(parts, i)
			return
		}
		parts = append(parts, s)
	}

	for _, c := range str {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				sb.WriteRune(c)
			}
		case c == '\'' || c == '"':
			quote = c
			quoted = true
		case c == '.':
			endPart()
		default:
			sb.WriteRune(c)
		}
	}
	if quote != 0 {
		panic(fmt.Errorf(`unterminated quote in key '%s'`, str))
	}
	endPart()
	return parts
}

func partToValue(p interface{}) dgo.Value {
	if i, ok := p.(int); ok {
		return vf.Integer(int64(i))
	}
	return vf.String(p.(string))
}

func (k *key) Bury(value dgo.Value) dgo.Value {
	for i := len(k.parts) - 1; i > 0; i-- {
		value = vf.Map(partToValue(k.parts[i]), value)
	}
	return value
}

func (k *key) Dig(ic Invocation, v dgo.Value) dgo.Value {
	t := len(k.parts)
	if t == 1 {
		return v
	}

	return ic.WithSubLookup(k, func() dgo.Value {
		for i := 1; i < t; i++ {
			p := k.parts[i]
			v = ic.WithSegment(p, func() dgo.Value {
				if sv := digPart(v, p); sv != nil {
					ic.ReportFound(p, sv)
					return sv
				}
				ic.ReportNotFound(p)
				return nil
			})
			if v == nil {
				break
			}
		}
		return v
	})
}

func digPart(v dgo.Value, p interface{}) dgo.Value {
	switch vc := v.(type) {
	case dgo.Array:
		if ix, ok := p.(int); ok && ix >= 0 && ix < vc.Len() {
			return vc.Get(ix)
		}
	case dgo.Map:
		return vc.Get(partToValue(p))
	}
	return nil
}

func (k *key) Parts() []interface{} {
	return k.parts
}

func (k *key) Root() string {
	return k.parts[0].(string)
}

func (k *key) Source() string {
	return k.source
}

func (k *key) String() string {
	return k.source
}
