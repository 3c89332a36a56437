package session

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/provider"
)

type lookupKeySource struct {
	tierEntry    api.Entry
	providerFunc hiera.LookupKey
}

// newLookupKeySource creates a new source with a lookup_key function configured from the
// given entry
func newLookupKeySource(he api.Entry) api.Source {
	return &lookupKeySource{tierEntry: he}
}

func (lk *lookupKeySource) Entry() api.Entry {
	return lk.tierEntry
}

func (lk *lookupKeySource) Lookup(key api.Key, ic api.Invocation, location api.Location) dgo.Value {
	root := key.Root()
	if value := lk.dataValue(ic, location, root); value != nil {
		ic.ReportFound(root, value)
		return value
	}
	ic.ReportNotFound(root)
	return nil
}

func (lk *lookupKeySource) dataValue(ic api.Invocation, location api.Location, root string) dgo.Value {
	opts := lk.tierEntry.Options()
	if location != nil {
		opts = optionsWithLocation(opts, location.Resolved())
	}
	value := lk.providerFunction(ic)(ic.ServerContext(opts), root)
	if value == nil {
		return nil
	}
	return ic.Interpolate(value, true)
}

func (lk *lookupKeySource) providerFunction(ic api.Invocation) (pf hiera.LookupKey) {
	if lk.providerFunc == nil {
		lk.providerFunc = lk.loadFunction(ic)
	}
	return lk.providerFunc
}

func (lk *lookupKeySource) loadFunction(ic api.Invocation) hiera.LookupKey {
	n := lk.tierEntry.Function().Name()
	switch n {
	case `environment`:
		return provider.Environment
	case `scope`:
		return provider.ScopeLookupKey
	case `yaml_lookup_key`:
		return provider.YamlLookupKey
	}

	if fn, ok := ic.LoadFunction(lk.tierEntry); ok {
		return func(pc hiera.ProviderContext, key string) dgo.Value {
			return fn.Call(vf.MutableValues(pc, key))[0]
		}
	}

	ic.ReportText(func() string { return fmt.Sprintf(`unresolved function '%s'`, n) })
	return func(pc hiera.ProviderContext, key string) dgo.Value {
		return nil
	}
}

func (lk *lookupKeySource) FullName() string {
	return fmt.Sprintf(`lookup_key function '%s'`, lk.tierEntry.Function().Name())
}
