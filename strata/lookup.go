// Package strata contains the Lookup functions to use when using the engine as a library.
package strata

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"regexp"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/explain"
	"github.com/strataproj/strata/session"
	"github.com/strataproj/strata/types"
)

// A CommandOptions contains the options given to the CLI lookup command or a REST invocation.
type CommandOptions struct {
	// Type is a type descriptor such as "String" or "Hash[String,Integer]" used for
	// assertion of the found value.
	Type string

	// Merge is the name of a merge strategy
	Merge string

	// Default is a pointer to the string representation of a default value or nil if no
	// default value exists
	Default *string

	// FactPaths are optional paths to files containing extra variables to add to the
	// lookup scope and as a copy under the lookup scope "facts" key.
	FactPaths []string

	// VarPaths are optional paths to files containing extra variables to add to the
	// lookup scope
	VarPaths []string

	// Variables are optional key:value strings with extra variables to add to the
	// lookup scope
	Variables []string

	// RenderAs is the name of the desired rendering
	RenderAs string

	// ExplainData should be set to true to explain the progress of a lookup
	ExplainData bool

	// ExplainOptions should be set to true to explain how lookup options were found
	// for the lookup
	ExplainOptions bool

	LookupAll bool
}

// Lookup performs a lookup using the given parameters.
//
// ic - The lookup invocation
//
// name - The name to lookup
//
// defaultValue - Optional value to use as default when no value is found
//
// options - Optional map with merge strategy and options
func Lookup(ic api.Invocation, name string, defaultValue dgo.Value, options interface{}) dgo.Value {
	return Lookup2(ic, []string{name}, nil, defaultValue, nil, nil, api.ToMap(`lookup options`, options), nil)
}

// Lookup2 performs a lookup using the given parameters.
//
// ic - The lookup invocation
//
// names[] - The name or names to lookup. Each name is tried against the override map and
// then the chain before the next name is consulted
//
// valueType - Optional expected type of the found value
//
// defaultValue - Optional value to use as default when no value is found
//
// override - Optional map consulted before the chain. A value found here wins immediately
//
// defaultValuesMap - Optional map consulted with the first name when all names miss
//
// defaultFunc - Optional deferred producer of a default value, consulted as the very last
// resort. Accepted forms are func() dgo.Value, func(dgo.Value) dgo.Value, and dgo.Function
//
// options - Optional map with merge strategy and options
//
// The function panics with a NotFoundError when every level of the pipeline comes up empty.
func Lookup2(
	ic api.Invocation,
	names []string,
	valueType types.Type,
	defaultValue dgo.Value,
	override dgo.Map,
	defaultValuesMap dgo.Map,
	options dgo.Map,
	defaultFunc interface{}) dgo.Value {
	for _, name := range names {
		if override != nil && override.Len() > 0 {
			if v := override.Get(name); v != nil {
				ic.ReportFoundInOverrides(name, v)
				return ensureType(api.RoleFound, valueType, v)
			}
		}
		key := api.NewKey(name)
		v := ic.WithKey(key, func() dgo.Value { return ic.Lookup(key, options) })
		if v != nil {
			return ensureType(api.RoleFound, valueType, v)
		}
	}

	// Only the first name takes part in the default values lookup
	if len(names) > 0 && defaultValuesMap != nil && defaultValuesMap.Len() > 0 {
		if v := defaultValuesMap.Get(names[0]); v != nil {
			ic.ReportFoundInDefaults(names[0], v)
			return ensureType(api.RoleDefaultValue, valueType, v)
		}
	}
	if defaultValue != nil {
		return ensureType(api.RoleDefaultValue, valueType, defaultValue)
	}
	if defaultFunc != nil {
		if v := produceDefault(defaultFunc, names); v != nil {
			return ensureType(api.RoleDefaultBlock, valueType, v)
		}
	}
	panic(api.NotFound(names...))
}

// produceDefault invokes the deferred default producer. The producer is called exactly once
// and its result is never memoized. A producer that takes an argument receives the single
// name as a String or, when several names were given, all names as an Array.
func produceDefault(df interface{}, names []string) dgo.Value {
	switch df := df.(type) {
	case dgo.Producer:
		return df()
	case func() dgo.Value:
		return df()
	case func(dgo.Value) dgo.Value:
		return df(namesValue(names))
	case dgo.Function:
		args := vf.MutableValues()
		if ft, ok := df.Type().(dgo.FunctionType); ok && ft.In().Max() > 0 {
			args.Add(namesValue(names))
		}
		return df.Call(args)[0]
	default:
		panic(fmt.Errorf(`unable to use value of type %T as a default producer`, df))
	}
}

func namesValue(names []string) dgo.Value {
	if len(names) == 1 {
		return vf.String(names[0])
	}
	return vf.Array(names)
}

// LookupAll performs a lookup of all the given names and returns a map of the names that
// were found and their values. Names that were not found are absent from the returned map.
//
// ic - The lookup invocation
//
// names[] - The names to lookup
//
// valueTypes - Optional expected type per name
//
// override - Optional map consulted before the chain
//
// defaultValuesMap - Optional map to use as the last resort
//
// options - Optional map with merge strategy and options
func LookupAll(
	ic api.Invocation,
	names []string,
	valueTypes map[string]types.Type,
	override dgo.Map,
	defaultValuesMap dgo.Map,
	options dgo.Map) dgo.Value {
	response := vf.MutableMap()
	for _, name := range names {
		var t types.Type
		if valueTypes != nil {
			t = valueTypes[name]
		}
		if override != nil && override.Len() > 0 {
			if v := override.Get(name); v != nil {
				ic.ReportFoundInOverrides(name, v)
				response.Put(name, ensureType(api.RoleFound, t, v))
				continue
			}
		}
		key := api.NewKey(name)
		v := ic.WithKey(key, func() dgo.Value { return ic.Lookup(key, options) })
		if v != nil {
			response.Put(name, ensureType(api.RoleFound, t, v))
			continue
		}
		if defaultValuesMap != nil && defaultValuesMap.Len() > 0 {
			if v := defaultValuesMap.Get(name); v != nil {
				ic.ReportFoundInDefaults(name, v)
				response.Put(name, ensureType(api.RoleDefaultValue, t, v))
			}
		}
	}
	return response
}

// LookupCall performs a lookup where all arguments are given in a single hash with the keys
// name, value_type, merge, override, default_values_hash, and default_value.
func LookupCall(ic api.Invocation, args dgo.Map) dgo.Value {
	var names []string
	switch n := args.Get(`name`).(type) {
	case dgo.String:
		names = []string{n.GoString()}
	case dgo.Array:
		names = make([]string, 0, n.Len())
		n.Each(func(v dgo.Value) { names = append(names, v.String()) })
	default:
		panic(fmt.Errorf(`lookup requires a 'name' that is a string or an array of strings`))
	}

	var valueType types.Type
	if ts, ok := args.Get(`value_type`).(dgo.String); ok {
		valueType = types.Parse(ts.GoString())
	}

	var options dgo.Map
	if m := args.Get(`merge`); m != nil {
		options = vf.Map(`merge`, m)
	}

	override, _ := args.Get(`override`).(dgo.Map)
	dvh, _ := args.Get(`default_values_hash`).(dgo.Map)
	return Lookup2(ic, names, valueType, args.Get(`default_value`), override, dvh, options, nil)
}

func ensureType(role api.Role, t types.Type, v dgo.Value) dgo.Value {
	if t != nil {
		types.Check(role, t, v)
	}
	return v
}

// TryWithParent initializes a session with global options and a top-level lookup key
// function and then calls the given consumer function with that session. If the given
// function panics, the panic will be recovered and returned as an error.
func TryWithParent(parent context.Context, tp hiera.LookupKey, options interface{}, consumer func(api.Session) error) error {
	return util.Catch(func() {
		s := session.New(parent, tp, options, nil)
		defer s.KillPlugins()
		err := consumer(s)
		if err != nil {
			panic(err)
		}
	})
}

// DoWithParent initializes a session with global options and a top-level lookup key
// function and then calls the given consumer function with that session.
func DoWithParent(parent context.Context, tp hiera.LookupKey, options interface{}, consumer func(api.Session)) {
	s := session.New(parent, tp, options, nil)
	defer s.KillPlugins()
	consumer(s)
}

// varSplit splits on either ':' or '=' but not on '::', ':=', '=:' or '=='
var varSplit = regexp.MustCompile(`\A(.*?[^:=])[:=]([^:=].*)\z`)
var needParsePrefix = []string{`{`, `[`, `"`, `'`}

// LookupAndRender performs a lookup using the given command options and arguments and
// renders the result on the given io.Writer in accordance with the RenderAs option.
func LookupAndRender(c api.Session, opts *CommandOptions, args []string, out io.Writer) bool {
	var tp types.Type
	if opts.Type != `` {
		if opts.LookupAll {
			panic(fmt.Errorf(`type option cannot be combined with the all option`))
		}
		tp = types.Parse(opts.Type)
	}

	var options dgo.Map
	if !(opts.Merge == `` || opts.Merge == `first`) {
		options = vf.Map(`merge`, opts.Merge)
	}

	var dv dgo.Value
	if opts.Default != nil {
		s := *opts.Default
		if s == `` {
			dv = vf.String(``)
		} else {
			dv = parseCommandLineValue(s)
		}
	}

	var explainer api.Explainer
	if opts.ExplainData || opts.ExplainOptions {
		explainer = explain.NewExplainer(opts.ExplainOptions, opts.ExplainOptions && !opts.ExplainData)
	}

	var found dgo.Value
	invocation := c.Invocation(createScope(opts), explainer)
	lookupErr := util.Catch(func() {
		if opts.LookupAll {
			found = LookupAll(invocation, args, nil, nil, nil, options)
		} else {
			found = Lookup2(invocation, args, tp, dv, nil, nil, options, nil)
		}
	})
	if explainer != nil {
		util.WriteString(out, explainer.String())
		util.WriteString(out, "\n")
		if lookupErr != nil {
			if _, ok := lookupErr.(*api.NotFoundError); ok {
				return false
			}
			panic(lookupErr)
		}
		return found != nil
	}
	if lookupErr != nil {
		if _, ok := lookupErr.(*api.NotFoundError); ok {
			return false
		}
		panic(lookupErr)
	}

	if found == nil {
		return false
	}

	renderAs := YAML
	if opts.RenderAs != `` {
		renderAs = RenderName(opts.RenderAs)
	}
	Render(renderAs, found, out)
	return true
}

func parseCommandLineValue(vs string) dgo.Value {
	vs = strings.TrimSpace(vs)
	for _, pfx := range needParsePrefix {
		if strings.HasPrefix(vs, pfx) {
			v, err := yaml.Unmarshal([]byte(vs))
			if err != nil {
				panic(err)
			}
			return v
		}
	}
	return vf.String(vs)
}

func createScope(opts *CommandOptions) dgo.Map {
	scope := vf.MutableMap()
	if vl := len(opts.Variables); vl > 0 {
		for _, e := range opts.Variables {
			if m := varSplit.FindStringSubmatch(e); m != nil {
				key := strings.TrimSpace(m[1])
				scope.Put(key, parseCommandLineValue(m[2]))
			} else {
				panic(fmt.Errorf("unable to parse variable '%s'", e))
			}
		}
	}

	addVarPaths(opts.VarPaths, scope)
	if len(opts.FactPaths) > 0 {
		facts := vf.MutableMap()
		addVarPaths(opts.FactPaths, facts)
		scope.PutAll(facts)
		scope.Put(`facts`, facts)
	}
	return scope
}

func addVarPaths(varPaths []string, m dgo.Map) {
	for _, vars := range varPaths {
		var bs []byte
		var err error
		if vars == `-` {
			bs, err = ioutil.ReadAll(os.Stdin)
		} else {
			bs, err = ioutil.ReadFile(vars)
		}
		if err == nil && len(bs) > 0 {
			var yv dgo.Value
			if yv, err = yaml.Unmarshal(bs); err == nil {
				if data, ok := yv.(dgo.Map); ok {
					m.PutAll(data)
				} else {
					err = fmt.Errorf(`file '%s' does not contain a YAML hash`, vars)
				}
			}
		}
		if err != nil {
			panic(err)
		}
	}
}
