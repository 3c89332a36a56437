package api

import (
	"context"
	"sync"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/hierasdk/hiera"
)

// A Session determines the life cycle of cached values during a strata session. The chain
// configuration, data files, and plugin processes are all cached at session level and shared
// read-only by the lookups made within the session.
type Session interface {
	context.Context

	// KillPlugins ensures that all external plugin processes that were started by this
	// session are killed
	KillPlugins()

	// LoadFunction loads the provider function defined in the given tier entry and returns
	// it together with a flag indicating if the load was a success
	LoadFunction(he Entry) (dgo.Function, bool)

	// Invocation creates a new invocation for this session
	Invocation(scope interface{}, explainer Explainer) Invocation

	// SessionOptions returns the session specific options
	SessionOptions() dgo.Map

	// Loader returns the session specific loader
	Loader() dgo.Loader

	// Scope returns the session's scope
	Scope() dgo.Keyed

	// SharedCache returns the cache that is shared by all lookups in the session
	SharedCache() *sync.Map

	// TopProvider returns the lookup function that defines the source chain
	TopProvider() hiera.LookupKey

	// TopProviderCache returns the shared provider cache used by all lookups
	TopProviderCache() *sync.Map

	// Get returns a session variable, or nil if no such variable exists. Session variables
	// are used internally by the engine and should not be confused with scope variables
	Get(key string) interface{}
}
