package types

import (
	"fmt"
	"strings"

	"github.com/lyraproj/dgo/dgo"

	"github.com/strataproj/strata/api"
)

// Check validates the given value against the expected descriptor on behalf of the given
// role. A nil descriptor means that no expectation exists and always passes, as does the Any
// descriptor. A panic with a WrongTypeError is raised on the first mismatch.
func Check(role api.Role, t Type, value dgo.Value) {
	if t == nil {
		return
	}
	if d := mismatch(t, value, ``); d != `` {
		panic(api.WrongType(role, d))
	}
}

// mismatch returns an empty string when the value conforms to the descriptor and a
// description of the first offending element otherwise.
func mismatch(t Type, v dgo.Value, path string) string {
	if t.Instance(v) {
		return ``
	}
	switch t := t.(type) {
	case *optionalType:
		return mismatch(t.typ, v, path)
	case *arrayType:
		if a, ok := v.(dgo.Array); ok {
			d := ``
			a.EachWithIndex(func(e dgo.Value, i int) {
				if d == `` {
					d = mismatch(t.elem, e, fmt.Sprintf(`index %d`, i))
				}
			})
			if d != `` {
				return d
			}
		}
	case *hashType:
		if m, ok := v.(dgo.Map); ok {
			d := ``
			m.EachEntry(func(e dgo.MapEntry) {
				if d == `` {
					d = mismatch(t.key, e.Key(), fmt.Sprintf(`key %v`, e.Key()))
				}
				if d == `` {
					d = mismatch(t.value, e.Value(), fmt.Sprintf(`entry '%v'`, e.Key()))
				}
			})
			if d != `` {
				return d
			}
		}
	}
	return expectation(t, v, path)
}

func expectation(t Type, v dgo.Value, path string) string {
	d := fmt.Sprintf(`expects %s value, got %s`, article(t.String()), valueName(v))
	if path != `` {
		d = path + ` ` + d
	}
	return d
}

func article(name string) string {
	switch {
	case name == ``:
		return name
	case strings.ContainsRune(`AEIOU`, rune(name[0])):
		return `an ` + name
	default:
		return `a ` + name
	}
}

func valueName(v dgo.Value) string {
	switch v.(type) {
	case nil:
		return `Undef`
	case dgo.String:
		return `String`
	case dgo.Integer:
		return `Integer`
	case dgo.Float:
		return `Float`
	case dgo.Boolean:
		return `Boolean`
	case dgo.Array:
		return `Array`
	case dgo.Map:
		return `Hash`
	case dgo.Binary:
		return `Binary`
	case dgo.Function:
		return `Function`
	default:
		if isUndef(v) {
			return `Undef`
		}
		return v.Type().String()
	}
}
