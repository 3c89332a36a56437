package merge_test

import (
	"testing"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/merge"
)

func TestGetStrategy_names(t *testing.T) {
	for _, n := range []string{`first`, `unique`, `hash`, `deep`} {
		require.Equal(t, n, merge.GetStrategy(n, nil).Name())
	}
}

func TestGetStrategy_unknown(t *testing.T) {
	require.PanicsWithError(t, `unknown merge strategy 'bogus'`, func() {
		merge.GetStrategy(`bogus`, nil)
	})
}

func TestFromOption_nil(t *testing.T) {
	require.Equal(t, `first`, merge.FromOption(nil).Name())
	require.Equal(t, `first`, merge.FromOption(vf.Nil).Name())
}

func TestFromOption_string(t *testing.T) {
	require.Equal(t, `deep`, merge.FromOption(vf.String(`deep`)).Name())
}

func TestFromOption_hash(t *testing.T) {
	s := merge.FromOption(vf.Map(`strategy`, `deep`, `merge_hash_arrays`, true))
	require.Equal(t, `deep`, s.Name())
	require.True(t, vf.Map(`merge_hash_arrays`, true).Equals(s.Options()))
}

func TestFromOption_hashWithoutStrategy(t *testing.T) {
	require.PanicsWithError(t, `hash given as 'merge' must contain the name of a strategy`, func() {
		merge.FromOption(vf.Map(`merge_hash_arrays`, true))
	})
}

func TestFromOption_badValue(t *testing.T) {
	require.PanicsWithError(t, `unknown merge strategy '32'`, func() {
		merge.FromOption(vf.Value(32))
	})
}

func TestDeep_disjointMaps(t *testing.T) {
	v, changed := merge.Deep(vf.Map(`a`, 1), vf.Map(`b`, 2), nil)
	require.True(t, changed)
	require.Equal(t, vf.Map(`a`, 1, `b`, 2), v)
}

func TestDeep_firstWins(t *testing.T) {
	v, changed := merge.Deep(vf.Map(`a`, 1), vf.Map(`a`, 2), nil)
	require.False(t, changed)
	require.Equal(t, vf.Map(`a`, 1), v)
}

func TestDeep_recursesIntoMaps(t *testing.T) {
	v, changed := merge.Deep(
		vf.Map(`a`, vf.Map(`b`, 1)),
		vf.Map(`a`, vf.Map(`c`, 2)), nil)
	require.True(t, changed)
	require.Equal(t, vf.Map(`a`, vf.Map(`b`, 1, `c`, 2)), v)
}

func TestDeep_arraysNotMergedByDefault(t *testing.T) {
	v, changed := merge.Deep(vf.Values(`a`), vf.Values(`b`), nil)
	require.False(t, changed)
	require.Equal(t, vf.Values(`a`), v)
}

func TestDeep_mergeHashArrays(t *testing.T) {
	opts := vf.Map(`merge_hash_arrays`, true)
	v, changed := merge.Deep(vf.Values(`a`, `b`), vf.Values(`b`, `c`), opts)
	require.True(t, changed)
	require.Equal(t, vf.Values(`a`, `b`, `c`), v)
}

func TestDeep_mergeHashArraysNested(t *testing.T) {
	opts := vf.Map(`merge_hash_arrays`, true)
	v, changed := merge.Deep(
		vf.Map(`a`, vf.Values(1)),
		vf.Map(`a`, vf.Values(2)), opts)
	require.True(t, changed)
	require.Equal(t, vf.Map(`a`, vf.Values(1, 2)), v)
}

func TestDeep_typeConflictFavorsFirst(t *testing.T) {
	var v dgo.Value
	v, _ = merge.Deep(vf.String(`scalar`), vf.Map(`a`, 1), nil)
	require.Equal(t, vf.String(`scalar`), v)
}
