package provider

import (
	"io/ioutil"
	"os"

	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
)

// pathOption returns the mandatory 'path' provider option
func pathOption(ctx hiera.ProviderContext) string {
	pv := ctx.Option(`path`)
	if pv == nil {
		panic(api.MissingRequiredOption(`path`))
	}
	return pv.String()
}

// readDataFile returns the contents of the file at path or nil when no such
// file exists. A missing data file is not an error, the tier just has no data.
func readDataFile(path string) []byte {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		panic(err)
	}
	return bs
}
