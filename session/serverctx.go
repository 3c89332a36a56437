package session

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

// serverCtx extends the plugin sdk ProviderContext with the in-process concerns
// that provider functions compiled into this binary may use, such as the cache
// shared by all top level providers and the current invocation.
type serverCtx struct {
	hiera.ProviderContext
	invocation api.Invocation
}

func (c *serverCtx) Interpolate(value dgo.Value) dgo.Value {
	return c.invocation.Interpolate(value, true)
}

func (c *serverCtx) Explain(messageProducer func() string) {
	c.invocation.ReportText(messageProducer)
}

// Cache stores the given value and returns the value that was stored under the
// key before the call, or nil when the key had no value.
func (c *serverCtx) Cache(key string, value dgo.Value) dgo.Value {
	cache := c.invocation.TopProviderCache()
	old, loaded := cache.Load(key)
	cache.Store(key, value)
	if loaded {
		return old.(dgo.Value)
	}
	return nil
}

func (c *serverCtx) CacheAll(hash dgo.Map) {
	cache := c.invocation.TopProviderCache()
	hash.EachEntry(func(e dgo.MapEntry) {
		cache.Store(e.Key().String(), e.Value())
	})
}

func (c *serverCtx) CachedValue(key string) (dgo.Value, bool) {
	if v, ok := c.invocation.TopProviderCache().Load(key); ok {
		return v.(dgo.Value), true
	}
	return nil, false
}

func (c *serverCtx) CachedEntries(consumer func(key string, value dgo.Value)) {
	c.invocation.TopProviderCache().Range(func(k, v interface{}) bool {
		consumer(k.(string), v.(dgo.Value))
		return true
	})
}

func (c *serverCtx) Invocation() api.Invocation {
	return c.invocation
}

func (c *serverCtx) ForData() api.ServerContext {
	return &serverCtx{ProviderContext: c.ProviderContext, invocation: c.invocation.ForData()}
}

func (c *serverCtx) ForLookupOptions() api.ServerContext {
	return &serverCtx{ProviderContext: c.ProviderContext, invocation: c.invocation.ForLookupOptions()}
}
