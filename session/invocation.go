package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/typ"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
	"github.com/strataproj/strata/merge"
)

const chainsPrefix = `StrataChain:`
const chainsLockPrefix = `StrataLock:`

type invocationMode byte

const (
	topLevelMode = invocationMode(iota)
	lookupOptionsMode
	dataMode
)

type ivContext struct {
	api.Session
	nameStack []string
	scope     dgo.Keyed
	luOpts    dgo.Map
	strategy  api.MergeStrategy
	chains    map[string]api.Chain
	explainer api.Explainer
	mode      invocationMode
	redacted  bool
}

type nestedScope struct {
	parentScope dgo.Keyed
	scope       dgo.Keyed
}

func newInvocation(s api.Session, scope dgo.Keyed, explainer api.Explainer) api.Invocation {
	return &ivContext{
		Session:   s,
		nameStack: []string{},
		scope:     scope,
		chains:    map[string]api.Chain{},
		explainer: explainer,
		mode:      topLevelMode}
}

func (ns *nestedScope) Get(key interface{}) dgo.Value {
	if v := ns.scope.Get(key); v != nil {
		return v
	}
	return ns.parentScope.Get(key)
}

func (ic *ivContext) Chain(configPath string, moduleName string) api.Chain {
	sc := ic.SharedCache()
	if configPath == `` {
		configPath = ic.SessionOptions().Get(api.StrataConfig).String()
	}

	if rc, ok := ic.chains[configPath]; ok {
		return rc
	}

	cp := chainsPrefix + configPath
	if val, ok := sc.Load(cp); ok {
		rc := Resolve(ic, val.(api.Config), moduleName)
		ic.chains[configPath] = rc
		return rc
	}

	lc := chainsLockPrefix + configPath

	myLock := sync.RWMutex{}
	myLock.Lock()

	var conf api.Config
	if lv, loaded := sc.LoadOrStore(lc, &myLock); loaded {
		// myLock was not stored so unlock it
		myLock.Unlock()

		if lock, ok := lv.(*sync.RWMutex); ok {
			// The loaded value is a lock. Wait for the config to be stored in place of
			// this lock
			lock.RLock()
			val, _ := sc.Load(cp)
			conf = val.(api.Config)
			lock.RUnlock()
		} else {
			conf = lv.(api.Config)
		}
	} else {
		conf = config.New(configPath)
		sc.Store(cp, conf)
		myLock.Unlock()
	}
	rc := Resolve(ic, conf, moduleName)
	ic.chains[configPath] = rc
	return rc
}

func (ic *ivContext) ExplainMode() bool {
	return ic.explainer != nil
}

func (ic *ivContext) LookupOptionsMode() bool {
	return ic.mode == lookupOptionsMode
}

func (ic *ivContext) DataMode() bool {
	return ic.mode == dataMode
}

// conversionType resolves the convert_to stipulation from the lookup options. The supported
// conversions form a closed set.
func (ic *ivContext) conversionType() (convertToType dgo.Type, convertToArgs dgo.Array) {
	lo := ic.luOpts
	if lo == nil {
		return
	}
	ct := lo.Get(`convert_to`)
	if ct == nil {
		return
	}
	var ts dgo.Value
	if cm, ok := ct.(dgo.Array); ok {
		// First arg must be a type. The rest is arguments
		switch cm.Len() {
		case 0:
			// Obviously bogus
		case 1:
			ts = cm.Get(0)
		default:
			ts = cm.Get(0)
			convertToArgs = cm.Slice(1, cm.Len())
		}
	} else {
		ts = ct
	}
	if ts != nil {
		switch ts.String() {
		case `Sensitive`:
			convertToType = typ.Sensitive
		case `Binary`:
			convertToType = typ.Binary
		default:
			panic(fmt.Errorf(`unsupported conversion type '%s'`, ts))
		}
	}
	return
}

func (ic *ivContext) SetMergeStrategy(requestedMerge dgo.Value, lookupOptions dgo.Map) {
	var opts dgo.Value
	if requestedMerge != nil {
		ic.ReportMergeSource(`CLI option`)
		opts = requestedMerge
	} else if lookupOptions != nil {
		if opts = lookupOptions.Get(`merge`); opts != nil {
			ic.ReportMergeSource(`"lookup_options" hash`)
		}
	}
	ic.luOpts = lookupOptions
	ic.strategy = merge.FromOption(opts)
}

func (ic *ivContext) LookupAndConvertData(fn func() dgo.Value) dgo.Value {
	convertToType, convertToArgs := ic.conversionType()

	var v dgo.Value
	if typ.Sensitive.Equals(convertToType) {
		ic.DoRedacted(func() { v = fn() })
	} else {
		v = fn()
	}

	if v != nil && convertToType != nil {
		if convertToArgs != nil {
			v = vf.Arguments(vf.Values(v).WithAll(convertToArgs))
		}
		v = vf.New(convertToType, v)
	}
	return v
}

func (ic *ivContext) MergeSources(key api.Key, srcs []api.Source, ms api.MergeStrategy) dgo.Value {
	return ms.Lookup(len(srcs), ic, func(i int) dgo.Value {
		return ic.MergeLocations(key, srcs[i], ms)
	})
}

func (ic *ivContext) MergeLocations(key api.Key, s api.Source, ms api.MergeStrategy) dgo.Value {
	return ic.WithSource(s, func() dgo.Value {
		locations := s.Entry().Locations()
		switch len(locations) {
		case 0:
			if locations == nil {
				return ic.invokeWithLocation(s, nil, key)
			}
			return nil // glob expanded to zero paths
		case 1:
			return ic.invokeWithLocation(s, locations[0], key)
		default:
			return ms.Lookup(len(locations), ic, func(i int) dgo.Value {
				return ic.invokeWithLocation(s, locations[i], key)
			})
		}
	})
}

func (ic *ivContext) invokeWithLocation(s api.Source, location api.Location, key api.Key) dgo.Value {
	if location == nil {
		return s.Lookup(key, ic, nil)
	}
	return ic.WithLocation(location, func() dgo.Value {
		if location.Exists() {
			return s.Lookup(key, ic, location)
		}
		ic.ReportLocationNotFound()
		return nil
	})
}

func (ic *ivContext) Lookup(key api.Key, options dgo.Map) dgo.Value {
	rootKey := key.Root()
	if rootKey == `lookup_options` {
		return ic.WithInvalidKey(key, func() dgo.Value {
			ic.ReportNotFound(key)
			return nil
		})
	}

	v := ic.TopProvider()(ic.ServerContext(options), rootKey)
	if v != nil {
		dc := ic.ForData()
		v = key.Dig(dc, v)
	}
	return v
}

func (ic *ivContext) WithKey(key api.Key, actor dgo.Producer) dgo.Value {
	if util.ContainsString(ic.nameStack, key.Source()) {
		panic(fmt.Errorf(`recursive lookup detected in [%s]`, strings.Join(ic.nameStack, `, `)))
	}
	ic.nameStack = append(ic.nameStack, key.Source())
	defer func() {
		ic.nameStack = ic.nameStack[:len(ic.nameStack)-1]
	}()
	return actor()
}

func (ic *ivContext) DoRedacted(doer dgo.Doer) {
	if ic.redacted {
		doer()
	} else {
		defer func() {
			ic.redacted = false
		}()
		ic.redacted = true
		doer()
	}
}

func (ic *ivContext) DoWithScope(scope dgo.Keyed, doer dgo.Doer) {
	sc := ic.scope
	ic.scope = scope
	doer()
	ic.scope = sc
}

func (ic *ivContext) Scope() dgo.Keyed {
	return ic.scope
}

// ServerContext creates and returns a new server context
func (ic *ivContext) ServerContext(options dgo.Map) api.ServerContext {
	return &serverCtx{ProviderContext: hiera.ProviderContextFromMap(options), invocation: ic}
}

// withFrame pushes an explanation frame for the duration of the producer call.
// The push function is not called unless an explainer is present.
func (ic *ivContext) withFrame(push func(api.Explainer), producer dgo.Producer) dgo.Value {
	if ic.explainer == nil {
		return producer()
	}
	defer ic.explainer.Pop()
	push(ic.explainer)
	return producer()
}

func (ic *ivContext) WithSource(s api.Source, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushSource(s) }, producer)
}

func (ic *ivContext) WithInterpolation(expr string, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushInterpolation(expr) }, producer)
}

func (ic *ivContext) WithInvalidKey(key interface{}, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushInvalidKey(key) }, producer)
}

func (ic *ivContext) WithLocation(loc api.Location, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushLocation(loc) }, producer)
}

func (ic *ivContext) WithLookup(key api.Key, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushLookup(key) }, producer)
}

func (ic *ivContext) WithMerge(ms api.MergeStrategy, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushMerge(ms) }, producer)
}

func (ic *ivContext) WithModule(moduleName string, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushModule(moduleName) }, producer)
}

func (ic *ivContext) WithSegment(seg interface{}, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushSegment(seg) }, producer)
}

func (ic *ivContext) WithSubLookup(key api.Key, producer dgo.Producer) dgo.Value {
	return ic.withFrame(func(e api.Explainer) { e.PushSubLookup(key) }, producer)
}

func (ic *ivContext) ForConfig() api.Invocation {
	if ic.explainer == nil {
		return ic
	}
	lic := *ic
	lic.explainer = nil
	return &lic
}

func (ic *ivContext) ForData() api.Invocation {
	if ic.DataMode() {
		return ic
	}
	lic := *ic
	if !(lic.explainer == nil || !lic.explainer.OnlyOptions()) {
		lic.explainer = nil
	}
	lic.mode = dataMode
	return &lic
}

func (ic *ivContext) LookupOptions() dgo.Map {
	return ic.luOpts
}

func (ic *ivContext) MergeStrategy() api.MergeStrategy {
	return ic.strategy
}

func (ic *ivContext) ForLookupOptions() api.Invocation {
	if ic.LookupOptionsMode() {
		return ic
	}
	lic := *ic
	if !(ic.explainer == nil || ic.explainer.Options() || ic.explainer.OnlyOptions()) {
		lic.explainer = nil
	}
	lic.mode = lookupOptionsMode
	return &lic
}

func (ic *ivContext) report(accept func(api.Explainer)) {
	if ic.explainer != nil {
		accept(ic.explainer)
	}
}

func (ic *ivContext) ReportLocationNotFound() {
	ic.report(func(e api.Explainer) { e.AcceptLocationNotFound() })
}

func (ic *ivContext) ReportFound(key interface{}, value dgo.Value) {
	ic.report(func(e api.Explainer) { e.AcceptFound(key, ic.maybeRedact(value)) })
}

func (ic *ivContext) ReportFoundInDefaults(key string, value dgo.Value) {
	ic.report(func(e api.Explainer) { e.AcceptFoundInDefaults(key, ic.maybeRedact(value)) })
}

func (ic *ivContext) ReportFoundInOverrides(key string, value dgo.Value) {
	ic.report(func(e api.Explainer) { e.AcceptFoundInOverrides(key, ic.maybeRedact(value)) })
}

func (ic *ivContext) ReportMergeResult(value dgo.Value) {
	ic.report(func(e api.Explainer) { e.AcceptMergeResult(ic.maybeRedact(value)) })
}

func (ic *ivContext) ReportMergeSource(source string) {
	ic.report(func(e api.Explainer) { e.AcceptMergeSource(source) })
}

func (ic *ivContext) ReportModuleNotFound() {
	ic.report(func(e api.Explainer) { e.AcceptModuleNotFound() })
}

func (ic *ivContext) ReportNotFound(key interface{}) {
	ic.report(func(e api.Explainer) { e.AcceptNotFound(key) })
}

func (ic *ivContext) ReportText(messageProducer func() string) {
	ic.report(func(e api.Explainer) { e.AcceptText(messageProducer()) })
}

func (ic *ivContext) maybeRedact(value dgo.Value) dgo.Value {
	if ic.redacted {
		return vf.String(`[redacted]`)
	}
	return value
}
