package api

import (
	"github.com/lyraproj/dgo/dgo"
)

// An Entry is the definition of one tier in the chain configuration.
type Entry interface {
	// Copy creates a copy of this entry for the given Config
	Copy(Config) Entry

	// Options returns the provider options
	Options() dgo.Map

	// DataDir returns the datadir
	DataDir() string

	// PluginDir returns the plugindir
	PluginDir() string

	// PluginFile returns the pluginfile
	PluginFile() string

	// Function returns the data_dig, data_hash, or lookup_key function of the tier
	Function() Function

	// Name returns the name of the tier
	Name() string

	// Resolve resolves this entry on behalf of the given invocation and defaults entry
	Resolve(ic Invocation, defaults Entry) Entry

	// Locations returns the resolved paths or globs. The method returns nil when no
	// locations are defined
	Locations() []Location
}
