package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"

	"github.com/strataproj/strata/api"
)

var interpolationPattern = regexp.MustCompile(`%{[^}]*}`)

// expressions that interpolate to an empty string rather than to a scope variable
var emptyInterpolations = map[string]bool{
	``:     true,
	`::`:   true,
	`""`:   true,
	"''":   true,
	`"::"`: true,
	"'::'": true,
}

type iplMethod int

const (
	methodScope = iplMethod(iota)
	methodAlias
	methodLookup
	methodLiteral
)

var methodPattern = regexp.MustCompile(`^(\w+)\((?:["]([^"]+)["]|[']([^']+)['])\)$`)

// parseMethod picks the interpolation method and its argument from an expression.
// A bare expression is a scope interpolation of the expression itself.
func parseMethod(expr string, allowMethods bool) (iplMethod, string) {
	groups := methodPattern.FindStringSubmatch(expr)
	if groups == nil {
		return methodScope, expr
	}
	if !allowMethods {
		panic(errors.New(`interpolation using method syntax is not allowed in this context`))
	}
	arg := groups[2]
	if arg == `` {
		arg = groups[3]
	}
	switch groups[1] {
	case `scope`:
		return methodScope, arg
	case `alias`:
		return methodAlias, arg
	case `lookup`:
		return methodLookup, arg
	case `literal`:
		return methodLiteral, arg
	default:
		panic(fmt.Errorf(`unknown interpolation method '%s'`, groups[1]))
	}
}

// Interpolate resolves interpolations in the given value and returns the result
func (ic *ivContext) Interpolate(value dgo.Value, allowMethods bool) dgo.Value {
	if result, changed := ic.doInterpolate(value, allowMethods); changed {
		return result
	}
	return value
}

func (ic *ivContext) doInterpolate(value dgo.Value, allowMethods bool) (dgo.Value, bool) {
	switch value := value.(type) {
	case dgo.String:
		return ic.InterpolateString(value.String(), allowMethods)
	case dgo.Array:
		cp := value.AppendToSlice(make([]dgo.Value, 0, value.Len()))
		changed := false
		for i, e := range cp {
			if v, c := ic.doInterpolate(e, allowMethods); c {
				changed = true
				cp[i] = v
			}
		}
		if !changed {
			return value, false
		}
		return vf.Array(cp), true
	case dgo.Map:
		cp := vf.MapWithCapacity(value.Len())
		changed := false
		value.EachEntry(func(e dgo.MapEntry) {
			k, kc := ic.doInterpolate(e.Key(), allowMethods)
			v, vc := ic.doInterpolate(e.Value(), allowMethods)
			cp.Put(k, v)
			if kc || vc {
				changed = true
			}
		})
		if !changed {
			return value, false
		}
		cp.Freeze()
		return cp, true
	default:
		return value, false
	}
}

// InterpolateString resolves a string containing interpolation expressions
func (ic *ivContext) InterpolateString(str string, allowMethods bool) (dgo.Value, bool) {
	if !strings.Contains(str, `%{`) {
		return vf.String(str), false
	}

	return ic.WithInterpolation(str, func() dgo.Value {
		var result dgo.Value
		str = interpolationPattern.ReplaceAllStringFunc(str, func(match string) string {
			expr := strings.TrimSpace(match[2 : len(match)-1])
			if emptyInterpolations[expr] {
				return ``
			}
			method, expr := parseMethod(expr, allowMethods)
			switch method {
			case methodLiteral:
				return expr
			case methodScope:
				if val := ic.InterpolateInScope(expr, allowMethods); val != nil {
					return val.String()
				}
				return ``
			case methodAlias:
				if match != str {
					panic(errors.New(`'alias' interpolation is only permitted if the expression is equal to the entire string`))
				}
				key := api.NewKey(expr)
				result = ic.WithKey(key, func() dgo.Value { return ic.Lookup(key, nil) })
				return ``
			default:
				key := api.NewKey(expr)
				val := ic.WithKey(key, func() dgo.Value { return ic.Lookup(key, nil) })
				if val == nil {
					return ``
				}
				return val.String()
			}
		})
		if result == nil {
			result = vf.String(str)
		}
		return result
	}), true
}

// InterpolateInScope resolves a key expression in the invocation scope
func (ic *ivContext) InterpolateInScope(expr string, allowMethods bool) dgo.Value {
	key := api.NewKey(expr)
	if val := ic.Scope().Get(key.Root()); val != nil {
		val, _ = ic.doInterpolate(val, allowMethods)
		return key.Dig(ic, val)
	}
	return nil
}
