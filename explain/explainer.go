// Package explain contains the lookup explainer logic
package explain

import (
	"fmt"
	"strconv"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/util"

	"github.com/strataproj/strata/api"
)

type event byte

const (
	noEvent = event(iota)
	found
	foundInDefaults
	foundInOverrides
	locationNotFound
	moduleNotFound
	notFound
	result
)

type explainNode interface {
	dgo.Indentable
	appendBranch(branch explainNode)
	appendText(text string)
	parent() explainNode
	setParent(p explainNode)
	base() *node
}

type node struct {
	p  explainNode
	bs []explainNode
	ts []string
	e  event
	v  dgo.Value
	k  string
}

func keyToString(k interface{}) string {
	switch k := k.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	case api.Key:
		return k.Source()
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprintf(`%v`, k)
	}
}

func (en *node) AppendTo(w dgo.Indenter) {
	en.dumpTexts(w)
}

func (en *node) appendBranch(branch explainNode) {
	en.bs = append(en.bs, branch)
}

func (en *node) appendText(text string) {
	en.ts = append(en.ts, text)
}

func (en *node) base() *node {
	return en
}

func (en *node) parent() explainNode {
	return en.p
}

func (en *node) setParent(p explainNode) {
	en.p = p
}

func (en *node) dumpOutcome(w dgo.Indenter) {
	switch en.e {
	case notFound:
		w.NewLine()
		w.Append(`No such key: "`)
		w.Append(en.k)
		w.AppendRune('"')
	case found, foundInDefaults, foundInOverrides:
		w.NewLine()
		w.Append(`Found key: "`)
		w.Append(en.k)
		w.Append(`" value: `)
		w.AppendValue(en.v)
		if en.e == foundInDefaults {
			w.Append(` in defaults`)
		} else if en.e == foundInOverrides {
			w.Append(` in overrides`)
		}
	}
	en.dumpTexts(w)
}

func (en *node) dumpTexts(w dgo.Indenter) {
	for _, t := range en.ts {
		w.NewLine()
		w.Append(t)
	}
}

func (en *node) dumpBranches(w dgo.Indenter) {
	for _, b := range en.bs {
		b.AppendTo(w)
	}
}

type sourceNode struct {
	node
	sourceName string
}

func (en *sourceNode) AppendTo(w dgo.Indenter) {
	w.NewLine()
	w.Append(en.sourceName)
	w = w.Indent()
	en.dumpBranches(w)
	en.dumpOutcome(w)
}

type interpolateNode struct {
	node
	expression string
}

func (en *interpolateNode) AppendTo(w dgo.Indenter) {
	w.NewLine()
	w.Append(`Interpolation on "`)
	w.Append(en.expression)
	w.AppendRune('"')
	en.dumpBranches(w.Indent())
}

type invalidKeyNode struct {
	node
}

func (en *invalidKeyNode) AppendTo(w dgo.Indenter) {
	w.NewLine()
	w.Append(`Invalid key "`)
	w.Append(en.k)
	w.AppendRune('"')
}

type segmentNode struct {
	node
	segment interface{}
}

func (en *segmentNode) AppendTo(w dgo.Indenter) {
	en.dumpOutcome(w)
}

type locationNode struct {
	node
	location api.Location
}

func (en *locationNode) AppendTo(w dgo.Indenter) {
	w.NewLine()
	w.Append(`Path "`)
	w.Append(en.location.Resolved())
	w.AppendRune('"')

	w = w.Indent()
	w.NewLine()
	w.Append(`Original `)
	w.Append(string(en.location.Kind()))
	w.Append(`: "`)
	w.Append(en.location.Original())
	w.AppendRune('"')

	en.dumpBranches(w)
	if en.e == locationNotFound {
		w.NewLine()
		w.Append(string(en.location.Kind()))
		w.Append(` not found`)
	}
	en.dumpOutcome(w)
}

type lookupNode struct {
	node
}

func (en *lookupNode) AppendTo(w dgo.Indenter) {
	if w.Len() > 0 || w.Level() > 0 {
		w.NewLine()
	}
	w.Append(`Searching for "`)
	w.Append(en.k)
	w.AppendRune('"')
	en.dumpBranches(w.Indent())
}

type mergeNode struct {
	node
	merge api.MergeStrategy
}

func (en *mergeNode) AppendTo(w dgo.Indenter) {
	switch len(en.bs) {
	case 0:
		// No action
	case 1:
		en.bs[0].AppendTo(w)
	default:
		w.NewLine()
		w.Append(`Merge strategy "`)
		w.Append(en.merge.Label())
		w.AppendRune('"')
		w = w.Indent()
		opts := en.merge.Options()
		if opts.Len() > 0 {
			w.NewLine()
			w.Append(`Options: `)
			w.AppendValue(opts)
		}
		en.dumpBranches(w)
		if en.e == result {
			w.NewLine()
			w.Append(`Merged result: `)
			w.AppendValue(en.v)
		}
	}
}

type mergeSourceNode struct {
	node
	mergeSource string
}

func (en *mergeSourceNode) AppendTo(w dgo.Indenter) {
	w.NewLine()
	w.Append(`Using merge options from `)
	w.Append(en.mergeSource)
}

type moduleNode struct {
	node
	moduleName string
}

func (en *moduleNode) AppendTo(w dgo.Indenter) {
	switch en.e {
	case moduleNotFound:
		w.NewLine()
		w.Append(`Module "`)
		w.Append(en.moduleName)
		w.Append(`" not found`)
	default:
		en.dumpBranches(w)
		en.dumpOutcome(w)
	}
}

type subLookupNode struct {
	node
	subKey api.Key
}

func (en *subLookupNode) AppendTo(w dgo.Indenter) {
	w.NewLine()
	w.Append(`Sub key: "`)
	for i, s := range en.subKey.Parts()[1:] {
		if i > 0 {
			w.AppendRune('.')
		}
		w.Append(keyToString(s))
	}
	w.AppendRune('"')
	w = w.Indent()
	en.dumpBranches(w)
	en.dumpOutcome(w)
}

type explainer struct {
	node
	current     explainNode
	options     bool
	onlyOptions bool
}

// NewExplainer creates a new configured Explainer instance.
func NewExplainer(options, onlyOptions bool) api.Explainer {
	ex := &explainer{options: options, onlyOptions: onlyOptions}
	ex.current = ex
	return ex
}

func (ex *explainer) AcceptFound(key interface{}, value dgo.Value) {
	cb := ex.current.base()
	cb.k = keyToString(key)
	cb.v = value
	cb.e = found
}

func (ex *explainer) AcceptFoundInDefaults(key string, value dgo.Value) {
	cb := ex.current.base()
	cb.k = key
	cb.v = value
	cb.e = foundInDefaults
}

func (ex *explainer) AcceptFoundInOverrides(key string, value dgo.Value) {
	cb := ex.current.base()
	cb.k = key
	cb.v = value
	cb.e = foundInOverrides
}

func (ex *explainer) AcceptLocationNotFound() {
	ex.current.base().e = locationNotFound
}

func (ex *explainer) AcceptMergeSource(mergeSource string) {
	en := &mergeSourceNode{mergeSource: mergeSource}
	en.p = ex.current
	ex.current.appendBranch(en)
}

func (ex *explainer) AcceptModuleNotFound() {
	ex.current.base().e = moduleNotFound
}

func (ex *explainer) AcceptNotFound(key interface{}) {
	cb := ex.current.base()
	cb.k = keyToString(key)
	cb.e = notFound
}

func (ex *explainer) AcceptMergeResult(value dgo.Value) {
	cb := ex.current.base()
	cb.v = value
	cb.e = result
}

func (ex *explainer) AcceptText(text string) {
	ex.current.appendText(text)
}

func (ex *explainer) push(en explainNode) {
	en.setParent(ex.current)
	ex.current.appendBranch(en)
	ex.current = en
}

func (ex *explainer) PushSource(s api.Source) {
	ex.push(&sourceNode{sourceName: s.FullName()})
}

func (ex *explainer) PushInterpolation(expr string) {
	ex.push(&interpolateNode{expression: expr})
}

func (ex *explainer) PushInvalidKey(key interface{}) {
	ex.push(&invalidKeyNode{node{k: keyToString(key)}})
}

func (ex *explainer) PushLocation(loc api.Location) {
	ex.push(&locationNode{location: loc})
}

func (ex *explainer) PushLookup(key api.Key) {
	ex.push(&lookupNode{node{k: keyToString(key)}})
}

func (ex *explainer) PushMerge(mrg api.MergeStrategy) {
	ex.push(&mergeNode{merge: mrg})
}

func (ex *explainer) PushModule(mn string) {
	ex.push(&moduleNode{moduleName: mn})
}

func (ex *explainer) PushSegment(seg interface{}) {
	ex.push(&segmentNode{segment: seg})
}

func (ex *explainer) PushSubLookup(key api.Key) {
	ex.push(&subLookupNode{subKey: key})
}

func (ex *explainer) Pop() {
	if ex.current != nil {
		ex.current = ex.current.parent()
	}
}

func (ex *explainer) OnlyOptions() bool {
	return ex.onlyOptions
}

func (ex *explainer) Options() bool {
	return ex.options
}

func (ex *explainer) AppendTo(w dgo.Indenter) {
	ex.dumpBranches(w)
	ex.dumpTexts(w)
}

func (ex *explainer) String() string {
	return util.ToIndentedString(ex)
}
