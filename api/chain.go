package api

import (
	"github.com/lyraproj/dgo/dgo"
)

// A Config is the parsed but not yet resolved strata.yaml configuration: an ordered list of
// tier entries together with the defaults that apply to entries that leave things out.
type Config interface {
	// Root returns the directory holding this Config
	Root() string

	// Path is the full path to this Config
	Path() string

	// Defaults returns the Defaults entry
	Defaults() Entry

	// Tiers returns the ordered tier entries. The order defines precedence; earlier
	// entries win
	Tiers() []Entry

	// DefaultTiers returns the tier entries that are consulted only when the ordinary
	// tiers yield nothing
	DefaultTiers() []Entry
}

// A Chain is a Config resolved on behalf of an Invocation: the ordered list of sources that
// lookups are made against. A Chain is immutable once created and shared read-only by all
// lookups in a session.
type Chain interface {
	// Config returns the Config that this chain was created from
	Config() Config

	// Sources returns the ordered Source slice. The order is the precedence order
	Sources() []Source

	// DefaultSources returns the Source slice for the configured default tiers. The
	// slice is empty when no default tiers are defined
	DefaultSources() []Source

	// LookupOptions returns the resolved lookup_options hash for the given key, or nil
	// when no such options exist
	LookupOptions(key Key) dgo.Map
}
