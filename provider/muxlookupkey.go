package provider

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/merge"
)

// LookupKeyFunctions is the session option that the MuxLookupKey function will use when finding
// the functions that it delegates to.
const LookupKeyFunctions = `strata::lookup::providers`

// MuxLookupKey performs a lookup using the lookup_key function slice registered under the
// LookupKeyFunctions key in the session options. The lookups are performed in the order the
// functions appear in the slice and the results are merged with the requested strategy.
//
// The intended use for this function is when a very simplistic setup is desired that requires
// no configuration files.
func MuxLookupKey(pc hiera.ProviderContext, key string) dgo.Value {
	sc, ok := pc.(api.ServerContext)
	if !ok {
		return nil
	}
	ic := sc.Invocation()
	rpv, ok := ic.SessionOptions().Get(LookupKeyFunctions).(dgo.Array)
	if !ok {
		return nil
	}
	fns := make([]dgo.Function, 0, rpv.Len())
	rpv.Each(func(v dgo.Value) {
		if f, ok := v.(dgo.Function); ok {
			fns = append(fns, f)
		}
	})
	if len(fns) == 0 {
		return nil
	}

	k := api.NewKey(key)
	luOpts := muxLookupOptions(sc.ForLookupOptions(), fns, k.Root())

	sc = sc.ForData()
	ic = sc.Invocation()
	args := vf.MutableValues(sc, key)
	return ic.WithLookup(k, func() dgo.Value {
		ic.SetMergeStrategy(sc.Option(`merge`), luOpts)
		return ic.LookupAndConvertData(func() dgo.Value {
			return ic.MergeStrategy().Lookup(len(fns), ic, func(i int) dgo.Value {
				return fns[i].Call(args)[0]
			})
		})
	})
}

func muxLookupOptions(sc api.ServerContext, fns []dgo.Function, root string) dgo.Map {
	ic := sc.Invocation()
	args := vf.MutableValues(sc, `lookup_options`)
	all, _ := merge.GetStrategy(`deep`, nil).Lookup(len(fns), ic, func(i int) dgo.Value {
		v := fns[i].Call(args)[0]
		if _, ok := v.(dgo.Map); ok {
			return v
		}
		return nil
	}).(dgo.Map)
	if all != nil {
		if lo, ok := all.Get(root).(dgo.Map); ok {
			return lo
		}
	}
	return nil
}
