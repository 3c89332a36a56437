package api

import (
	"github.com/lyraproj/dgo/dgo"
)

// An Invocation keeps track of one specific lookup invocation. It carries the state that is
// scoped to the request, guards against endless recursion, and feeds the explainer when one
// is active.
type Invocation interface {
	Session

	// Chain obtains the chain appointed by the given configPath and moduleName. The chain is
	// considered global when the moduleName is the empty string. A global chain can find data
	// and lookup options for any key. A module chain can only find data and lookup options
	// for keys prefixed with the name of the module.
	Chain(configPath string, moduleName string) Chain

	// DoWithScope associates the given scope with this invocation and calls the given Doer
	// function. The scope is then restored to what it was before the call
	DoWithScope(scope dgo.Keyed, doer dgo.Doer)

	// DoRedacted calls doer and, while it is executing, prevents found values from being
	// revealed in logs
	DoRedacted(doer dgo.Doer)

	// Interpolate resolves interpolations in the given value and returns the result
	Interpolate(value dgo.Value, allowMethods bool) dgo.Value

	// InterpolateInScope resolves a key expression in the invocation scope
	InterpolateInScope(expr string, allowMethods bool) dgo.Value

	// InterpolateString resolves a string containing interpolation expressions
	InterpolateString(str string, allowMethods bool) (dgo.Value, bool)

	// Lookup resolves the given key by querying the top provider of the session
	Lookup(key Key, options dgo.Map) dgo.Value

	// WithKey calls the given producer with this key pushed onto the name stack. A panic is
	// raised when the key is already present on the stack since that means that the lookup
	// is recursing into itself
	WithKey(key Key, producer dgo.Producer) dgo.Value

	// LookupAndConvertData calls fn and applies any convert_to stipulated by the
	// lookup options that are assigned to this invocation. When the conversion target is
	// Sensitive, occurrences of the found value are redacted in log statements written
	// during the call
	LookupAndConvertData(fn func() dgo.Value) dgo.Value

	// MergeSources merges the result of performing a lookup using each of the given sources
	MergeSources(key Key, sources []Source, ms MergeStrategy) dgo.Value

	// MergeLocations merges the result of lookups on all locations (or without location) for
	// the given source and merge strategy
	MergeLocations(key Key, source Source, ms MergeStrategy) dgo.Value

	// ReportText adds the message returned by the given function to the lookup explainer.
	// The function is only called when explanation support is enabled
	ReportText(messageProducer func() string)

	// ReportLocationNotFound reports that the current location wasn't found
	ReportLocationNotFound()

	// ReportFound reports that the given value was found using the given key
	ReportFound(key interface{}, value dgo.Value)

	// ReportFoundInDefaults reports that the given value was found in the default values hash
	ReportFoundInDefaults(key string, value dgo.Value)

	// ReportFoundInOverrides reports that the given value was found in the override hash
	ReportFoundInOverrides(key string, value dgo.Value)

	// ReportMergeResult reports the result of the current merge operation
	ReportMergeResult(value dgo.Value)

	// ReportMergeSource reports the source of the current merge (explicit option or lookup
	// options)
	ReportMergeSource(source string)

	// ReportModuleNotFound reports that the current module was not found
	ReportModuleNotFound()

	// ReportNotFound reports that the given key was not found
	ReportNotFound(key interface{})

	// ServerContext returns a new server context for this invocation configured with the
	// given options
	ServerContext(options dgo.Map) ServerContext

	// WithSource pushes the given source onto the explanation stack and calls the producer,
	// then pops the source again before returning
	WithSource(s Source, f dgo.Producer) dgo.Value

	// WithInterpolation pushes the given expression onto the explanation stack and calls the
	// producer, then pops the expression again before returning
	WithInterpolation(expr string, f dgo.Producer) dgo.Value

	// WithInvalidKey pushes the given key onto the explanation stack and calls the producer,
	// then pops the key again before returning
	WithInvalidKey(key interface{}, f dgo.Producer) dgo.Value

	// WithLocation pushes the given location onto the explanation stack and calls the
	// producer, then pops the location again before returning
	WithLocation(loc Location, f dgo.Producer) dgo.Value

	// WithLookup pushes the given key onto the explanation stack and calls the producer,
	// then pops the key again before returning
	WithLookup(key Key, f dgo.Producer) dgo.Value

	// WithMerge pushes the given strategy onto the explanation stack and calls the producer,
	// then pops the strategy again before returning
	WithMerge(ms MergeStrategy, f dgo.Producer) dgo.Value

	// WithModule pushes the given module onto the explanation stack and calls the producer,
	// then pops the module again before returning
	WithModule(moduleName string, f dgo.Producer) dgo.Value

	// WithSegment pushes the given key segment onto the explanation stack and calls the
	// producer, then pops the segment again before returning
	WithSegment(seg interface{}, f dgo.Producer) dgo.Value

	// WithSubLookup pushes the given key onto the explanation stack and calls the producer,
	// then pops the key again before returning
	WithSubLookup(key Key, f dgo.Producer) dgo.Value

	// ExplainMode returns true when explain support is active
	ExplainMode() bool

	// ForConfig returns an Invocation without explain support
	ForConfig() Invocation

	// ForData returns an Invocation that has adjusted its explainer according to how it
	// should report lookup of data (as opposed to lookup of "lookup_options")
	ForData() Invocation

	// ForLookupOptions returns an Invocation that has adjusted its explainer according to
	// how it should report lookup of the "lookup_options" key
	ForLookupOptions() Invocation

	// SetMergeStrategy sets the current merge strategy for the invocation from the given
	// merge option and the lookupOptions for the key that is currently being looked up
	SetMergeStrategy(requestedMerge dgo.Value, lookupOptions dgo.Map)

	// MergeStrategy returns the current merge strategy
	MergeStrategy() MergeStrategy

	// LookupOptions returns the current lookup options
	LookupOptions() dgo.Map

	// LookupOptionsMode returns true when this invocation is adjusted to do lookup of the
	// "lookup_options" key
	LookupOptionsMode() bool

	// DataMode returns true when this invocation is adjusted to do lookup of data and not
	// "lookup_options"
	DataMode() bool
}
