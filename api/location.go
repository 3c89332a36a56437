package api

// LocationKind describes the kind of location used in a tier entry.
type LocationKind string

// LcPath indicates that the location is a path in a file system
const LcPath = LocationKind(`path`)

// LcGlob indicates that the location is a glob
const LcGlob = LocationKind(`glob`)

// A Location is a data location in a tier entry, either a relative path or a glob that
// expands to zero or more paths when resolved.
type Location interface {
	// Kind returns the location kind
	Kind() LocationKind

	// Exists returns true if the resolved location exists on the file system
	Exists() bool

	// Resolve interpolates the original string and resolves it against the given data
	// directory. A glob may expand into multiple locations
	Resolve(ic Invocation, dataDir string) []Location

	// Original returns the location string as it appeared in the configuration
	Original() string

	// Resolved returns the absolute path of the resolved location
	Resolved() string
}
