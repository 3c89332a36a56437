// Package config contains the code to load the strata configuration from a strata.yaml file
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/tf"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgoyaml/yaml"

	"github.com/strataproj/strata/api"
)

type cfg struct {
	root         string
	path         string
	defaults     *entry
	tiers        []api.Entry
	defaultTiers []api.Entry
}

const definitions = `{
	options=map[/\A[A-Za-z](:?[0-9A-Za-z_-]*[0-9A-Za-z])?\z/]data,
	rstring=string[1],
	defaults={
	  options?:options,
	  data_dig?:rstring,
	  data_hash?:rstring,
	  lookup_key?:rstring,
	  datadir?:rstring,
	  plugindir?:rstring
	},
	entry={
	  name:rstring,
	  options?:options,
	  data_dig?:rstring,
	  data_hash?:rstring,
	  lookup_key?:rstring,
	  datadir?:rstring,
	  plugindir?:rstring,
	  pluginfile?:rstring,
	  path?:rstring,
	  paths?:[1]rstring,
	  glob?:rstring,
	  globs?:[1]rstring
	}
}`

const cfgTypeString = `{
	version:1,
	defaults?:defaults,
	tiers?:[]entry,
	default_tiers?:[]entry
}`

// FileName is the default file name for the strata configuration file.
const FileName = `strata.yaml`

var cfgType dgo.Type

func init() {
	tf.ParseType(definitions)
	cfgType = tf.ParseType(cfgTypeString)
}

// New creates a new unresolved Config from the given path. If the path does not exist, the
// default config is returned.
func New(configPath string) api.Config {
	content, err := ioutil.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			panic(err)
		}
		dc := &cfg{
			root:         filepath.Dir(configPath),
			path:         ``,
			defaultTiers: []api.Entry{},
		}
		dc.defaults = dc.makeDefaultConfig()
		dc.tiers = dc.makeDefaultTiers()
		return dc
	}

	yv, err := yaml.Unmarshal(content)
	if err != nil {
		panic(err)
	}
	cfgMap := yv.(dgo.Map)
	if !cfgType.Instance(cfgMap) {
		panic(tf.IllegalAssignment(cfgType, cfgMap))
	}

	return createConfig(configPath, cfgMap)
}

func createConfig(path string, hash dgo.Map) api.Config {
	c := &cfg{root: filepath.Dir(path), path: path}

	if dv := hash.Get(`defaults`); dv != nil {
		c.defaults = c.createEntry(`defaults`, dv.(dgo.Map)).(*entry)
	} else {
		c.defaults = c.makeDefaultConfig()
	}

	if tv := hash.Get(`tiers`); tv != nil {
		c.tiers = c.createTiers(tv.(dgo.Array))
	} else {
		c.tiers = c.makeDefaultTiers()
	}

	if tv := hash.Get(`default_tiers`); tv != nil {
		c.defaultTiers = c.createTiers(tv.(dgo.Array))
	}

	return c
}

func defaultDataDir() string {
	dataDir, exists := os.LookupEnv(`STRATA_DATADIR`)
	if !exists {
		dataDir = `data`
	}
	return dataDir
}

func defaultPluginDir() string {
	pluginDir, exists := os.LookupEnv(`STRATA_PLUGINDIR`)
	if !exists {
		pluginDir = `plugin`
	}
	return pluginDir
}

func (hc *cfg) makeDefaultConfig() *entry {
	return &entry{
		cfg:       hc,
		dataDir:   defaultDataDir(),
		pluginDir: defaultPluginDir(),
		function:  &function{kind: api.KindDataHash, name: `yaml_data`},
	}
}

func (hc *cfg) makeDefaultTiers() []api.Entry {
	return []api.Entry{
		&entry{cfg: hc, name: `Common`, locations: []api.Location{NewPath(`common.yaml`)}}}
}

func (hc *cfg) Tiers() []api.Entry {
	return hc.tiers
}

func (hc *cfg) DefaultTiers() []api.Entry {
	return hc.defaultTiers
}

func (hc *cfg) Root() string {
	return hc.root
}

func (hc *cfg) Path() string {
	return hc.path
}

func (hc *cfg) Defaults() api.Entry {
	return hc.defaults
}

func (hc *cfg) createTiers(tiers dgo.Array) []api.Entry {
	entries := make([]api.Entry, 0, tiers.Len())
	uniqueNames := make(map[string]bool, tiers.Len())
	tiers.Each(func(hv dgo.Value) {
		hh := hv.(dgo.Map)
		name := ``
		if nv := hh.Get(`name`); nv != nil {
			name = nv.String()
		}
		if uniqueNames[name] {
			panic(fmt.Errorf(`tier name '%s' defined more than once`, name))
		}
		uniqueNames[name] = true
		entries = append(entries, hc.createEntry(name, hh))
	})
	return entries
}

func (hc *cfg) createEntry(name string, entryHash dgo.Map) api.Entry {
	entry := &entry{cfg: hc, name: name}
	entry.initialize(name, entryHash)
	entryHash.EachEntry(func(me dgo.MapEntry) {
		ks := me.Key().String()
		v := me.Value()
		switch {
		case ks == `datadir`:
			entry.dataDir = v.String()
		case ks == `plugindir`:
			entry.pluginDir = v.String()
		case ks == `pluginfile`:
			entry.pluginFile = v.String()
		case util.ContainsString(LocationKeys, ks):
			if entry.locations != nil {
				panic(fmt.Errorf(`only one of %s can be defined in tier '%s'`, strings.Join(LocationKeys, `, `), name))
			}
			switch ks {
			case `path`:
				entry.locations = []api.Location{NewPath(v.String())}
			case `paths`:
				a := v.(dgo.Array)
				entry.locations = make([]api.Location, 0, a.Len())
				a.Each(func(p dgo.Value) { entry.locations = append(entry.locations, NewPath(p.String())) })
			case `glob`:
				entry.locations = []api.Location{NewGlob(v.String())}
			default:
				a := v.(dgo.Array)
				entry.locations = make([]api.Location, 0, a.Len())
				a.Each(func(p dgo.Value) { entry.locations = append(entry.locations, NewGlob(p.String())) })
			}
		}
	})
	return entry
}
