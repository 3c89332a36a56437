// Package provider contains the in-process provider functions that source data for tiers.
package provider

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

// YamlData is a data_hash provider that reads a YAML hash from the file appointed
// by the 'path' option and returns it as a Map
func YamlData(ctx hiera.ProviderContext) dgo.Map {
	path := pathOption(ctx)
	bs := readDataFile(path)
	if bs == nil {
		return vf.Map()
	}
	v, err := yaml.Unmarshal(bs)
	if err != nil {
		panic(err)
	}
	data, ok := v.(dgo.Map)
	if !ok {
		panic(api.YamlNotHash(path))
	}
	return data
}
