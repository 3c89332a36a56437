package api

// FunctionKind denotes what kind of provider function a tier uses.
type FunctionKind string

// KindDataDig is the function kind for data_dig functions
const KindDataDig = FunctionKind(`data_dig`)

// KindDataHash is the function kind for data_hash functions
const KindDataHash = FunctionKind(`data_hash`)

// KindLookupKey is the function kind for lookup_key functions
const KindLookupKey = FunctionKind(`lookup_key`)

// A Function is the definition of a tier provider function, i.e. a data_dig, data_hash, or
// lookup_key.
type Function interface {
	// Kind returns the function kind
	Kind() FunctionKind

	// Name returns the name of the function
	Name() string

	// Resolve resolves the function on behalf of the given invocation
	Resolve(ic Invocation) (Function, bool)
}
