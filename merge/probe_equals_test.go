package merge_test

import (
	"testing"

	"github.com/lyraproj/dgo/vf"

	"github.com/strataproj/strata/merge"
)

func TestProbeEquals(t *testing.T) {
	s := merge.FromOption(vf.Map(`strategy`, `deep`, `merge_hash_arrays`, true))
	t.Logf("FromOption_hash: %v == %v -> %v", vf.Map(`merge_hash_arrays`, true), s.Options(), vf.Map(`merge_hash_arrays`, true).Equals(s.Options()))

	v, _ := merge.Deep(vf.Map(`a`, 1), vf.Map(`b`, 2), nil)
	t.Logf("disjointMaps: %v -> %v", v, vf.Map(`a`, 1, `b`, 2).Equals(v))

	v, _ = merge.Deep(vf.Map(`a`, vf.Map(`b`, 1)), vf.Map(`a`, vf.Map(`c`, 2)), nil)
	t.Logf("recursesIntoMaps: %v -> %v", v, vf.Map(`a`, vf.Map(`b`, 1, `c`, 2)).Equals(v))

	opts := vf.Map(`merge_hash_arrays`, true)
	v, _ = merge.Deep(vf.Values(`a`, `b`), vf.Values(`b`, `c`), opts)
	t.Logf("mergeHashArrays: %v -> %v", v, vf.Values(`a`, `b`, `c`).Equals(v))

	v, _ = merge.Deep(vf.Map(`a`, vf.Values(1)), vf.Map(`a`, vf.Values(2)), opts)
	t.Logf("mergeHashArraysNested: %v -> %v", v, vf.Map(`a`, vf.Values(1, 2)).Equals(v))
}
