package session

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

type dataDigSource struct {
	tierEntry    api.Entry
	providerFunc hiera.DataDig
}

// newDataDigSource creates a new source with a data_dig function configured from the
// given entry
func newDataDigSource(he api.Entry) api.Source {
	return &dataDigSource{tierEntry: he}
}

func (dd *dataDigSource) Entry() api.Entry {
	return dd.tierEntry
}

func (dd *dataDigSource) Lookup(key api.Key, ic api.Invocation, location api.Location) dgo.Value {
	opts := dd.tierEntry.Options()
	if location != nil {
		opts = optionsWithLocation(opts, location.Resolved())
	}
	segments := vf.Values(key.Parts()...)
	value := dd.providerFunction(ic)(ic.ServerContext(opts), segments)
	if value == nil {
		ic.ReportNotFound(key.Source())
		return nil
	}
	ic.ReportFound(key.Source(), value)

	// The outer machinery digs into the value of the root key so restore
	// the nesting that the full key denotes
	return key.Bury(ic.Interpolate(value, true))
}

func (dd *dataDigSource) providerFunction(ic api.Invocation) (pf hiera.DataDig) {
	if dd.providerFunc == nil {
		dd.providerFunc = dd.loadFunction(ic)
	}
	return dd.providerFunc
}

func (dd *dataDigSource) loadFunction(ic api.Invocation) hiera.DataDig {
	n := dd.tierEntry.Function().Name()
	if fn, ok := ic.LoadFunction(dd.tierEntry); ok {
		return func(pc hiera.ProviderContext, key dgo.Array) dgo.Value {
			return fn.Call(vf.MutableValues(pc, key))[0]
		}
	}

	ic.ReportText(func() string { return fmt.Sprintf(`unresolved function '%s'`, n) })
	return func(pc hiera.ProviderContext, key dgo.Array) dgo.Value {
		return nil
	}
}

func (dd *dataDigSource) FullName() string {
	return fmt.Sprintf(`data_dig function '%s'`, dd.tierEntry.Function().Name())
}
