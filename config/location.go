package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/bmatcuk/doublestar"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/tf"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"

	"github.com/strataproj/strata/api"
)

type path struct {
	original string
	resolved string
	exists   bool
}

type glob string

var pathType = tf.NewNamed(
	`strata.path`,
	func(v dgo.Value) dgo.Value {
		m := v.(dgo.Map)
		return &path{
			original: m.Get(`original`).(dgo.String).GoString(),
			resolved: m.Get(`resolved`).(dgo.String).GoString(),
			exists:   m.Get(`exists`).(dgo.Boolean).GoBool()}
	},
	func(v dgo.Value) dgo.Value {
		p := v.(*path)
		return vf.Map(
			`original`, p.original,
			`resolved`, p.resolved,
			`exists`, p.exists)
	},
	reflect.TypeOf(&path{}),
	reflect.TypeOf((*api.Location)(nil)).Elem(),
	nil)

var globType = tf.NewNamed(
	`strata.glob`,
	func(v dgo.Value) dgo.Value {
		return glob(v.(dgo.String).GoString())
	},
	func(v dgo.Value) dgo.Value {
		return vf.String(string(v.(glob)))
	},
	reflect.TypeOf(glob(``)),
	reflect.TypeOf((*api.Location)(nil)).Elem(),
	nil)

// NewPath returns a Location that appoints one file beneath the tier's data directory
func NewPath(original string) api.Location {
	return &path{original: original}
}

// NewGlob returns a Location that expands to all files beneath the tier's data
// directory that match a doublestar pattern
func NewGlob(pattern string) api.Location {
	return glob(pattern)
}

// interpolateDataPath interpolates scope variables in the original location string
// and joins the result with the data directory
func interpolateDataPath(ic api.Invocation, dataDir, original string) string {
	r, _ := ic.InterpolateString(original, false)
	return filepath.Join(dataDir, r.String())
}

func (p *path) Type() dgo.Type {
	return pathType
}

func (p *path) HashCode() int {
	return util.StringHash(p.original)
}

func (p *path) Equals(value interface{}) bool {
	if op, ok := value.(*path); ok {
		return *p == *op
	}
	return false
}

func (p *path) Exists() bool {
	return p.exists
}

func (p *path) Kind() api.LocationKind {
	return api.LcPath
}

func (p *path) String() string {
	return fmt.Sprintf(`path{original:%s, resolved:%s, exists:%v}`, p.original, p.resolved, p.exists)
}

func (p *path) Resolve(ic api.Invocation, dataDir string) []api.Location {
	rp := interpolateDataPath(ic, dataDir, p.original)
	_, err := os.Stat(rp)
	return []api.Location{&path{p.original, rp, err == nil}}
}

func (p *path) Original() string {
	return p.original
}

func (p *path) Resolved() string {
	return p.resolved
}

func (g glob) Type() dgo.Type {
	return globType
}

func (g glob) Equals(other interface{}) bool {
	return g == other
}

func (g glob) HashCode() int {
	return util.StringHash(string(g))
}

// Exists is always false for a glob. Only resolved paths exist.
func (g glob) Exists() bool {
	return false
}

func (g glob) Kind() api.LocationKind {
	return api.LcGlob
}

func (g glob) String() string {
	return fmt.Sprintf(`glob{pattern:%s}`, g.Original())
}

func (g glob) Original() string {
	return string(g)
}

// Resolve expands the pattern. The returned slice is empty, not nil, when nothing
// matched so that a resolved glob can be told apart from an unresolved location.
func (g glob) Resolve(ic api.Invocation, dataDir string) []api.Location {
	matches, _ := doublestar.Glob(interpolateDataPath(ic, dataDir, g.Original()))
	ls := make([]api.Location, len(matches))
	for i, m := range matches {
		ls[i] = &path{g.Original(), m, true}
	}
	return ls
}

func (g glob) Resolved() string {
	panic(fmt.Errorf(`resolved requested on a glob`))
}
