package session

import (
	"fmt"
	"sync"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/provider"
)

type dataHashSource struct {
	tierEntry    api.Entry
	providerFunc hiera.DataHash
	hashes       dgo.Map
	hashesLock   sync.RWMutex
}

// newDataHashSource creates a new source with a data_hash function configured from the
// given entry
func newDataHashSource(he api.Entry) api.Source {
	ls := he.Locations()
	return &dataHashSource{tierEntry: he, hashes: vf.MapWithCapacity(len(ls))}
}

func (dh *dataHashSource) Entry() api.Entry {
	return dh.tierEntry
}

func (dh *dataHashSource) Lookup(key api.Key, ic api.Invocation, location api.Location) dgo.Value {
	root := key.Root()
	if value := dh.dataValue(ic, location, root); value != nil {
		ic.ReportFound(root, value)
		return value
	}
	ic.ReportNotFound(root)
	return nil
}

func (dh *dataHashSource) dataValue(ic api.Invocation, location api.Location, root string) dgo.Value {
	value := dh.dataHash(ic, location).Get(root)
	if value == nil {
		return nil
	}
	return ic.Interpolate(value, true)
}

func (dh *dataHashSource) providerFunction(ic api.Invocation) (pf hiera.DataHash) {
	if dh.providerFunc == nil {
		dh.providerFunc = dh.loadFunction(ic)
	}
	return dh.providerFunc
}

func (dh *dataHashSource) loadFunction(ic api.Invocation) hiera.DataHash {
	n := dh.tierEntry.Function().Name()
	switch n {
	case `yaml_data`:
		return provider.YamlData
	case `json_data`:
		return provider.JSONData
	}

	if fn, ok := ic.LoadFunction(dh.tierEntry); ok {
		return func(pc hiera.ProviderContext) (value dgo.Map) {
			value = vf.Map()
			v := fn.Call(vf.MutableValues(pc))
			if dv, ok := v[0].(dgo.Map); ok {
				value = dv
			}
			return
		}
	}

	ic.ReportText(func() string { return fmt.Sprintf(`unresolved function '%s'`, n) })
	return func(pc hiera.ProviderContext) dgo.Map {
		return vf.Map()
	}
}

func (dh *dataHashSource) dataHash(ic api.Invocation, location api.Location) (hash dgo.Map) {
	key := ``
	opts := dh.tierEntry.Options()
	if location != nil {
		key = location.Resolved()
		opts = optionsWithLocation(opts, key)
	}

	var ok bool
	dh.hashesLock.RLock()
	hash, ok = dh.hashes.Get(key).(dgo.Map)
	dh.hashesLock.RUnlock()
	if ok {
		return
	}

	dh.hashesLock.Lock()
	defer dh.hashesLock.Unlock()

	if hash, ok = dh.hashes.Get(key).(dgo.Map); ok {
		return hash
	}
	hash = dh.providerFunction(ic)(ic.ServerContext(opts))
	dh.hashes.Put(key, hash)
	return
}

func (dh *dataHashSource) FullName() string {
	return fmt.Sprintf(`data_hash function '%s'`, dh.tierEntry.Function().Name())
}

func optionsWithLocation(options dgo.Map, loc string) dgo.Map {
	return options.Merge(vf.Map(`path`, loc))
}
