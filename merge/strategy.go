// Package merge contains the strategies used to combine the values that several sources
// return for one and the same key.
package merge

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"

	"github.com/strataproj/strata/api"
)

type (
	firstFound struct{}

	unique struct{}

	hashMerge struct{}

	deepMerge struct{ opts dgo.Map }
)

// GetStrategy returns the MergeStrategy that corresponds to the given name. The options
// argument is only applicable to deep merge.
func GetStrategy(n string, opts dgo.Map) api.MergeStrategy {
	switch n {
	case `first`:
		return &firstFound{}
	case `unique`:
		return &unique{}
	case `hash`:
		return &hashMerge{}
	case `deep`:
		if opts == nil {
			opts = vf.Map()
		}
		return &deepMerge{opts: opts}
	default:
		panic(api.UnknownMergeStrategy(n))
	}
}

// FromOption creates the strategy described by the given merge option. The option is either
// the name of a strategy or a hash with a 'strategy' entry holding the name and any further
// entries holding strategy options. A nil or undef option yields the first found strategy.
// A hash without a 'strategy' entry is an error.
func FromOption(merge dgo.Value) api.MergeStrategy {
	if merge == nil || vf.Nil.Equals(merge) {
		return &firstFound{}
	}
	switch merge := merge.(type) {
	case dgo.String:
		return GetStrategy(merge.GoString(), nil)
	case dgo.Map:
		if n, ok := merge.Get(`strategy`).(dgo.String); ok {
			return GetStrategy(n.GoString(), merge.Without(`strategy`))
		}
		panic(api.MissingMergeStrategy())
	default:
		panic(api.UnknownMergeStrategy(merge.String()))
	}
}

// merger is the internal face of the strategies that combine all found values
type merger interface {
	api.MergeStrategy

	// single converts the value of a lone variant into a result
	single(v dgo.Value) dgo.Value

	// convert validates and normalizes the first found value
	convert(v dgo.Value) dgo.Value

	// merge merges the memo a with the next found value b. a has higher precedence
	merge(a, b dgo.Value) dgo.Value
}

func reduce(s merger, n int, ic api.Invocation, value func(i int) dgo.Value) dgo.Value {
	switch n {
	case 0:
		return nil
	case 1:
		if v := value(0); v != nil {
			return s.single(v)
		}
		return nil
	default:
		return ic.WithMerge(s, func() dgo.Value {
			var memo dgo.Value
			for i := 0; i < n; i++ {
				if v := value(i); v != nil {
					if memo == nil {
						memo = s.convert(v)
					} else {
						memo = s.merge(memo, v)
					}
				}
			}
			if memo != nil {
				ic.ReportMergeResult(memo)
			}
			return memo
		})
	}
}

func requireArray(strategy string, v dgo.Value) dgo.Array {
	if a, ok := v.(dgo.Array); ok {
		return a
	}
	panic(api.NotMergeable(strategy, `array`))
}

func requireHash(strategy string, v dgo.Value) dgo.Map {
	if m, ok := v.(dgo.Map); ok {
		return m
	}
	panic(api.NotMergeable(strategy, `hash`))
}

func (d *firstFound) Name() string {
	return `first`
}

func (d *firstFound) Label() string {
	return `first found strategy`
}

func (d *firstFound) Options() dgo.Map {
	return vf.Map()
}

func (d *firstFound) Lookup(n int, ic api.Invocation, value func(i int) dgo.Value) dgo.Value {
	for i := 0; i < n; i++ {
		if v := value(i); v != nil {
			if n > 1 {
				ic.ReportMergeResult(v)
			}
			return v
		}
	}
	return nil
}

func (d *unique) Name() string {
	return `unique`
}

func (d *unique) Label() string {
	return `unique merge strategy`
}

func (d *unique) Options() dgo.Map {
	return vf.Map()
}

func (d *unique) Lookup(n int, ic api.Invocation, value func(i int) dgo.Value) dgo.Value {
	return reduce(d, n, ic, value)
}

func (d *unique) single(v dgo.Value) dgo.Value {
	return requireArray(`unique`, v).Flatten().Unique()
}

func (d *unique) convert(v dgo.Value) dgo.Value {
	return requireArray(`unique`, v).Flatten()
}

func (d *unique) merge(a, b dgo.Value) dgo.Value {
	return a.(dgo.Array).WithAll(requireArray(`unique`, b).Flatten()).Unique()
}

func (d *hashMerge) Name() string {
	return `hash`
}

func (d *hashMerge) Label() string {
	return `hash merge strategy`
}

func (d *hashMerge) Options() dgo.Map {
	return vf.Map()
}

func (d *hashMerge) Lookup(n int, ic api.Invocation, value func(i int) dgo.Value) dgo.Value {
	return reduce(d, n, ic, value)
}

func (d *hashMerge) single(v dgo.Value) dgo.Value {
	return requireHash(`hash`, v)
}

func (d *hashMerge) convert(v dgo.Value) dgo.Value {
	return requireHash(`hash`, v)
}

func (d *hashMerge) merge(a, b dgo.Value) dgo.Value {
	return requireHash(`hash`, b).Merge(a.(dgo.Map))
}

func (d *deepMerge) Name() string {
	return `deep`
}

func (d *deepMerge) Label() string {
	return `deep merge strategy`
}

func (d *deepMerge) Options() dgo.Map {
	return d.opts
}

func (d *deepMerge) Lookup(n int, ic api.Invocation, value func(i int) dgo.Value) dgo.Value {
	return reduce(d, n, ic, value)
}

func (d *deepMerge) single(v dgo.Value) dgo.Value {
	return requireHash(`deep`, v)
}

func (d *deepMerge) convert(v dgo.Value) dgo.Value {
	return requireHash(`deep`, v)
}

func (d *deepMerge) merge(a, b dgo.Value) dgo.Value {
	v, _ := Deep(a, requireHash(`deep`, b), d.opts)
	return v
}
