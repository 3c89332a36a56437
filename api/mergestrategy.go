package api

import (
	"github.com/lyraproj/dgo/dgo"
)

// MergeStrategy is responsible for merging or prioritizing the results of several lookups
// into one.
type MergeStrategy interface {
	// Label returns a short descriptive label of this strategy
	Label() string

	// Name returns the name of this strategy
	Name() string

	// Lookup performs a lookup over n ordered variants. The value function returns the
	// lookup result for the variant with the given index, or nil when that variant has no
	// value. Variants are queried in precedence order, index zero first. The first found
	// strategy stops querying once a value is found; all other strategies query every
	// variant and merge what was found.
	Lookup(n int, ic Invocation, value func(i int) dgo.Value) dgo.Value

	// Options returns the options for this strategy or an empty map when the strategy has
	// no options
	Options() dgo.Map
}
