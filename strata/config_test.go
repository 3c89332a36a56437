package strata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/strata"
)

func TestChainLookup_default(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `defaultconfig`)}
	strata.DoWithParent(context.Background(), nil, options, func(hs api.Session) {
		require.Equal(t, `value of first`, strata.Lookup(hs.Invocation(nil, nil), `first`, nil, nil).String())
	})
}

func TestChainLookup_explicit(t *testing.T) {
	testExplicit(t, `first`, ``, `value of first`)
}

func TestChainLookup_secondTier(t *testing.T) {
	testExplicit(t, `second`, ``, `value of second`)
}

func TestChainLookup_hashMerge(t *testing.T) {
	testExplicitValue(t, `hash`, `hash`,
		vf.Map(
			`one`, 1,
			`two`, `two`,
			`three`, vf.Map(`a`, `A`, `c`, `C`)))
}

func TestChainLookup_deepMergeFromLookupOptions(t *testing.T) {
	// the lookup_options hash stipulates a deep merge for this key
	testExplicitValue(t, `hash`, ``,
		vf.Map(
			`one`, 1,
			`two`, `two`,
			`three`, vf.Map(`a`, `A`, `b`, `B`, `c`, `C`)))
}

func TestChainLookup_unique(t *testing.T) {
	testExplicitValue(t, `array`, `unique`, vf.Values(`one`, `two`, `three`, `four`, `five`))
}

func TestChainLookup_uniqueRequiresArrays(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `explicit`)}
	err = strata.TryWithParent(context.Background(), nil, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `hash`, nil, map[string]string{`merge`: `unique`})
		return nil
	})
	require.EqualError(t, err, `merge strategy 'unique' requires array values`)
}

func TestChainLookup_hashRequiresHashes(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `explicit`)}
	err = strata.TryWithParent(context.Background(), nil, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `array`, nil, map[string]string{`merge`: `hash`})
		return nil
	})
	require.EqualError(t, err, `merge strategy 'hash' requires hash values`)
}

func TestChainLookup_mergeHashWithoutStrategy(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `explicit`)}
	err = strata.TryWithParent(context.Background(), nil, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `hash`, nil,
			vf.Map(`merge`, vf.Map(`merge_hash_arrays`, true)))
		return nil
	})
	require.EqualError(t, err, `hash given as 'merge' must contain the name of a strategy`)
}

func TestChainLookup_sensitive(t *testing.T) {
	testExplicit(t, `sense`, ``, `sensitive [value redacted]`)
}

func TestChainLookup_lookupOptionsIsNotAKey(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `explicit`)}
	strata.DoWithParent(context.Background(), nil, options, func(hs api.Session) {
		require.PanicsWithError(t, `did not find a value for the name 'lookup_options'`, func() {
			strata.Lookup(hs.Invocation(nil, nil), `lookup_options`, nil, nil)
		})
	})
}

func TestChainLookup_defaultTiers(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `defaults`)}
	strata.DoWithParent(context.Background(), nil, options, func(hs api.Session) {
		// a value found in a tier shadows the default tiers
		require.Equal(t, `a from the tier`, strata.Lookup(hs.Invocation(nil, nil), `a`, nil, nil).String())

		// the default tiers are consulted when no tier has the key
		require.Equal(t, `b from the fallback`, strata.Lookup(hs.Invocation(nil, nil), `b`, nil, nil).String())
	})
}

func TestChainLookup_glob(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `globs`)}
	strata.DoWithParent(context.Background(), nil, options, func(hs api.Session) {
		iv := hs.Invocation(nil, nil)
		require.Equal(t, `from one`, strata.Lookup(iv, `frag`, nil, nil).String())
		require.Equal(t, `1`, strata.Lookup(iv, `one_only`, nil, nil).String())
		require.Equal(t, `2`, strata.Lookup(iv, `two_only`, nil, nil).String())
	})
}

func testExplicit(t *testing.T, key, merge, expected string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `explicit`)}
	var luOpts map[string]string
	if merge != `` {
		luOpts = map[string]string{`merge`: merge}
	}
	strata.DoWithParent(context.Background(), nil, options, func(hs api.Session) {
		require.Equal(t, expected, strata.Lookup(hs.Invocation(nil, nil), key, nil, luOpts).String())
	})
}

func testExplicitValue(t *testing.T, key, merge string, expected dgo.Value) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	options := map[string]string{api.StrataRoot: filepath.Join(wd, `testdata`, `explicit`)}
	var luOpts map[string]string
	if merge != `` {
		luOpts = map[string]string{`merge`: merge}
	}
	strata.DoWithParent(context.Background(), nil, options, func(hs api.Session) {
		v := strata.Lookup(hs.Invocation(nil, nil), key, nil, luOpts)
		require.True(t, expected.Equals(v), `expected %v, got %v`, expected, v)
	})
}
