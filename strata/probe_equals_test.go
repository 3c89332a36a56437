package strata_test

import (
	"testing"

	"github.com/lyraproj/dgo/vf"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/strata"
)

func TestProbeEquals(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		v := strata.Lookup(iv, `ipAlias`, nil, options)
		t.Logf("interpolateAlias: %v -> %v", v, vf.Values(`one`, `two`, `three`).Equals(v))
	})
	testOneLookup(t, func(iv api.Invocation) {
		v := strata.LookupAll(iv, []string{`first`, `nope`, `array.0`}, nil, nil, nil, options)
		t.Logf("lookupAll: %v -> %v", v, vf.Map(`first`, `value of first`, `array.0`, `one`).Equals(v))
	})
}
