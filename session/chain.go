package session

import (
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/merge"
)

type chain struct {
	cfg            api.Config
	moduleName     string
	sources        []api.Source
	defaultSources []api.Source
	lookupOptions  dgo.Map
}

// CreateSource creates and returns the Source configured by the given tier entry
func CreateSource(e api.Entry) api.Source {
	switch e.Function().Kind() {
	case api.KindDataHash:
		return newDataHashSource(e)
	case api.KindDataDig:
		return newDataDigSource(e)
	default:
		return newLookupKeySource(e)
	}
}

// Resolve resolves the given Config into a Chain. Resolving means creating the proper
// Sources for all tier entries and digging up the lookup_options that the chain provides
func Resolve(ic api.Invocation, hc api.Config, moduleName string) api.Chain {
	r := &chain{cfg: hc, moduleName: moduleName}
	r.resolve(ic)
	return r
}

func (r *chain) Config() api.Config {
	return r.cfg
}

func (r *chain) Sources() []api.Source {
	return r.sources
}

func (r *chain) DefaultSources() []api.Source {
	return r.defaultSources
}

func (r *chain) LookupOptions(key api.Key) dgo.Map {
	if r.lookupOptions != nil {
		if m, ok := r.lookupOptions.Get(key.Root()).(dgo.Map); ok {
			return m
		}
	}
	return nil
}

func (r *chain) resolve(ic api.Invocation) {
	icc := ic.ForConfig()
	r.sources = r.createSources(icc, r.cfg.Tiers())
	r.defaultSources = r.createSources(icc, r.cfg.DefaultTiers())

	ms := merge.GetStrategy(`deep`, nil)
	k := api.NewKey(`lookup_options`)
	lic := ic.ForLookupOptions()
	v := lic.WithLookup(k, func() dgo.Value {
		return lic.MergeSources(k, r.sources, ms)
	})

	if lm, ok := v.(dgo.Map); ok {
		if r.moduleName != `` {
			lm = moduleOptions(lm, r.moduleName)
		}
		r.lookupOptions = lm
	}
}

// moduleOptions strips out entries for keys that don't belong to the given module. A module
// chain can only provide lookup options for its own keys
func moduleOptions(lm dgo.Map, moduleName string) dgo.Map {
	prefix := moduleName + `::`
	mm := vf.MapWithCapacity(lm.Len())
	lm.EachEntry(func(e dgo.MapEntry) {
		if strings.HasPrefix(e.Key().String(), prefix) {
			mm.Put(e.Key(), e.Value())
		}
	})
	mm.Freeze()
	return mm
}

func (r *chain) createSources(ic api.Invocation, tiers []api.Entry) []api.Source {
	sources := make([]api.Source, len(tiers))
	defaults := r.cfg.Defaults().Resolve(ic, nil)
	for i, he := range tiers {
		sources[i] = CreateSource(he.Resolve(ic, defaults))
	}
	return sources
}
