package api

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
)

// An Explainer collects information about a lookup and can present it in the form of a
// fairly verbose human readable explanation.
type Explainer interface {
	dgo.Indentable
	fmt.Stringer

	// AcceptFound accepts information that a value was found for a given key
	AcceptFound(key interface{}, value dgo.Value)

	// AcceptFoundInDefaults accepts information that a value was found for a given key in
	// the default values hash
	AcceptFoundInDefaults(key string, value dgo.Value)

	// AcceptFoundInOverrides accepts information that a value was found for a given key in
	// the override hash
	AcceptFoundInOverrides(key string, value dgo.Value)

	// AcceptLocationNotFound accepts information that the current location was not found
	AcceptLocationNotFound()

	// AcceptMergeSource accepts information about the source of the merge options, such as
	// the lookup_options hash
	AcceptMergeSource(mergeSource string)

	// AcceptModuleNotFound accepts that the current module was not found
	AcceptModuleNotFound()

	// AcceptNotFound accepts information that a key was not found
	AcceptNotFound(key interface{})

	// AcceptMergeResult accepts information about the result of a merge
	AcceptMergeResult(value dgo.Value)

	// AcceptText accepts arbitrary text to be injected into the explanation
	AcceptText(text string)

	// PushSource pushes a source onto the stack of explanations
	PushSource(s Source)

	// PushInterpolation pushes an interpolation expression onto the stack of explanations
	PushInterpolation(expr string)

	// PushInvalidKey pushes an invalid key onto the stack of explanations
	PushInvalidKey(key interface{})

	// PushLocation pushes a location onto the stack of explanations
	PushLocation(loc Location)

	// PushLookup pushes a lookup key onto the stack of explanations
	PushLookup(key Key)

	// PushMerge pushes a merge strategy onto the stack of explanations
	PushMerge(mrg MergeStrategy)

	// PushModule pushes a module name onto the stack of explanations
	PushModule(moduleName string)

	// PushSegment pushes a key segment onto the stack of explanations
	PushSegment(seg interface{})

	// PushSubLookup pushes a sub lookup key onto the stack of explanations
	PushSubLookup(key Key)

	// Pop pops an explainer node from the stack of explanations
	Pop()

	// OnlyOptions returns true when lookup of lookup_options is the only thing that is
	// included in the explanation
	OnlyOptions() bool

	// Options returns true when lookup of lookup_options is included in the explanation
	Options() bool
}
