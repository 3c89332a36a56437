package provider

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

// ScopeLookupKey is a lookup_key function that performs a lookup in the current scope.
func ScopeLookupKey(pc hiera.ProviderContext, key string) dgo.Value {
	if sc, ok := pc.(api.ServerContext); ok {
		return sc.Invocation().Scope().Get(vf.String(key))
	}
	return nil
}
