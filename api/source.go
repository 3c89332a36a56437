package api

import (
	"github.com/lyraproj/dgo/dgo"
)

// A Source is one tier in the precedence chain. It performs lookups using the provider
// function that was configured for its tier entry.
type Source interface {
	// Entry returns the tier entry where this source was configured
	Entry() Entry

	// FullName returns a descriptive name of the source. Used by the explainer
	FullName() string

	// Lookup performs a lookup of the given key at the given location and returns the result
	// or nil when the key was not found. The location is one of the resolved locations of this
	// source's tier entry, or nil when the entry has no locations. A returned dgo value that
	// equals vf.Nil means that the key was found and explicitly bound to no value.
	Lookup(key Key, ic Invocation, location Location) dgo.Value
}
