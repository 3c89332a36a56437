package provider

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

// ChainLookupKey performs a lookup through the chain of sources that has been specified in a
// yaml based configuration stored on disk.
func ChainLookupKey(pc hiera.ProviderContext, key string) dgo.Value {
	sc, ok := pc.(api.ServerContext)
	if !ok {
		return nil
	}
	return ChainLookupKeyAt(sc, ``, key, ``)
}

// ChainLookupKeyAt performs a lookup through the chain appointed by the given configuration
// path. An empty configPath denotes the chain of the session configuration. A non-empty
// moduleName restricts the chain to keys prefixed with that module name.
func ChainLookupKeyAt(sc api.ServerContext, configPath, key, moduleName string) dgo.Value {
	chain := sc.Invocation().Chain(configPath, moduleName)
	if chain == nil {
		return nil
	}
	sc = sc.ForData()
	ic := sc.Invocation()
	k := api.NewKey(key)
	return ic.WithLookup(k, func() dgo.Value {
		ic.SetMergeStrategy(sc.Option(`merge`), chain.LookupOptions(k))
		return ic.LookupAndConvertData(func() dgo.Value {
			v := ic.MergeSources(k, chain.Sources(), ic.MergeStrategy())
			if v == nil {
				if ds := chain.DefaultSources(); len(ds) > 0 {
					v = ic.MergeSources(k, ds, ic.MergeStrategy())
				}
			}
			return v
		})
	})
}
