package provider

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/streamer"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

// JSONData is a data_hash provider that reads a JSON object from the file appointed
// by the 'path' option and returns it as a Map
func JSONData(ctx hiera.ProviderContext) dgo.Map {
	path := pathOption(ctx)
	bs := readDataFile(path)
	if bs == nil {
		return vf.Map()
	}
	data, ok := streamer.UnmarshalJSON(bs, nil).(dgo.Map)
	if !ok {
		panic(api.JSONNotHash(path))
	}
	return data
}
