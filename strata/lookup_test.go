package strata_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	sdk "github.com/lyraproj/hierasdk/hiera"
	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/provider"
	"github.com/strataproj/strata/strata"
	"github.com/strataproj/strata/types"
)

var options = vf.Map(`path`, `./testdata/sample_data.yaml`)

func TestLookup_first(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `value of first`, strata.Lookup(iv, `first`, nil, nil).String())
	})
}

func TestLookup_dottedInt(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `two`, strata.Lookup(iv, `array.1`, nil, nil).String())
	})
}

func TestLookup_dottedMix(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `value of first`, strata.Lookup(iv, `hash.array.1`, nil, nil).String())
	})
}

func TestLookup_interpolate(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `includes 'value of first'`, strata.Lookup(iv, `second`, nil, nil).String())
	})
}

func TestLookup_interpolateScope(t *testing.T) {
	s := map[string]string{
		`world`: `cruel world`,
	}
	testLookup(t, func(hs api.Session) {
		require.Equal(t, `hello cruel world`, strata.Lookup(hs.Invocation(s, nil), `ipScope`, nil, nil).String())
		require.Equal(t, `hello cruel world`, strata.Lookup(hs.Invocation(s, nil), `ipScope2`, nil, nil).String())
	})
}

func TestLookup_interpolateEmpty(t *testing.T) {
	testLookup(t, func(hs api.Session) {
		for _, k := range []string{`empty1`, `empty2`, `empty3`, `empty4`, `empty5`, `empty6`} {
			require.Equal(t, `StartEnd`, strata.Lookup(hs.Invocation(nil, nil), k, nil, nil).String())
		}
	})
}

func TestLookup_interpolateLiteral(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `some literal text`, strata.Lookup(iv, `ipLiteral`, nil, options).String())
	})
}

func TestLookup_interpolateAlias(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, vf.Values(`one`, `two`, `three`), strata.Lookup(iv, `ipAlias`, nil, options))
	})
}

func TestLookup_interpolateBadAlias(t *testing.T) {
	err := strata.TryWithParent(context.Background(), provider.YamlLookupKey, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `ipBadAlias`, nil, options)
		return nil
	})
	require.EqualError(t, err, `'alias' interpolation is only permitted if the expression is equal to the entire string`)
}

func TestLookup_interpolateBadFunction(t *testing.T) {
	err := strata.TryWithParent(context.Background(), provider.YamlLookupKey, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `ipBad`, nil, options)
		return nil
	})
	require.EqualError(t, err, `unknown interpolation method 'bad'`)
}

func TestLookup_recursive(t *testing.T) {
	err := strata.TryWithParent(context.Background(), provider.YamlLookupKey, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `recursive`, nil, options)
		return nil
	})
	require.EqualError(t, err, `recursive lookup detected in [recursive]`)
}

func TestLookup_mutuallyRecursive(t *testing.T) {
	err := strata.TryWithParent(context.Background(), provider.YamlLookupKey, options, func(hs api.Session) error {
		strata.Lookup(hs.Invocation(nil, nil), `mutual1`, nil, options)
		return nil
	})
	require.EqualError(t, err, `recursive lookup detected in [mutual1, mutual2]`)
}

func TestLookup_notFoundWithoutDefault(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.PanicsWithError(t, `did not find a value for the name 'nonexistent'`, func() {
			strata.Lookup(iv, `nonexistent`, nil, options)
		})
	})
}

func TestLookup_notFoundDflt(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `default value`, strata.Lookup(iv, `nonexistent`, vf.String(`default value`), options).String())
	})
}

func TestLookup_notFoundDottedIdx(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `default value`, strata.Lookup(iv, `array.3`, vf.String(`default value`), options).String())
	})
}

func TestLookup_notFoundDottedMix(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `default value`, strata.Lookup(iv, `hash.float`, vf.String(`default value`), options).String())
	})
}

func TestLookup_badStringDig(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.PanicsWithError(t, `did not find a value for the name 'hash.int.v'`, func() {
			strata.Lookup(iv, `hash.int.v`, nil, options)
		})
	})
}

func TestLookup2_findFirst(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `value of first`,
			strata.Lookup2(iv, []string{`first`, `second`}, nil, nil, nil, nil, options, nil).String())
	})
}

func TestLookup2_findSecond(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `includes 'value of first'`,
			strata.Lookup2(iv, []string{`non existing`, `second`}, nil, nil, nil, nil, options, nil).String())
	})
}

func TestLookup2_notFoundWithoutDflt(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.PanicsWithError(t, `did not find a value for any of the names ['non existing', 'not there']`, func() {
			strata.Lookup2(iv, []string{`non existing`, `not there`}, nil, nil, nil, nil, options, nil)
		})
	})
}

func TestLookup2_notFoundDflt(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `default value`,
			strata.Lookup2(iv, []string{`non existing`, `not there`}, nil, vf.String(`default value`), nil, nil, options, nil).String())
	})
}

func TestLookup2_overrideWins(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		ov := vf.Map(`first`, `overridden`)
		require.Equal(t, `overridden`,
			strata.Lookup2(iv, []string{`first`}, nil, nil, ov, nil, options, nil).String())
	})
}

func TestLookup2_overridePerName(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		// the override for the second name is consulted before the sources are tried
		// with that name, but the first name hits the sources first
		ov := vf.Map(`second`, `overridden`)
		require.Equal(t, `value of first`,
			strata.Lookup2(iv, []string{`first`, `second`}, nil, nil, ov, nil, options, nil).String())
		require.Equal(t, `overridden`,
			strata.Lookup2(iv, []string{`nope`, `second`}, nil, nil, ov, nil, options, nil).String())
	})
}

func TestLookup2_defaultValuesHashFirstNameOnly(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		dvh := vf.Map(`nope`, `from defaults`, `other`, `not this one`)
		require.Equal(t, `from defaults`,
			strata.Lookup2(iv, []string{`nope`, `other`}, nil, nil, nil, dvh, options, nil).String())

		// only the first name is consulted in the default values hash
		require.PanicsWithError(t, `did not find a value for any of the names ['missing', 'nope']`, func() {
			strata.Lookup2(iv, []string{`missing`, `nope`}, nil, nil, nil, dvh, options, nil)
		})
	})
}

func TestLookup_foundNull(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		// a key bound to null is found, the default does not apply
		require.Equal(t, vf.Nil, strata.Lookup(iv, `nothing`, vf.String(`dflt`), options))
	})
}

func TestLookup2_foundNullSkipsDefaults(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, vf.Nil,
			strata.Lookup2(iv, []string{`nothing`}, nil, vf.String(`dflt`), nil, vf.Map(`nothing`, `x`), options, nil))
	})
}

func TestLookup2_defaultProducerNoArgs(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		calls := 0
		df := func() dgo.Value {
			calls++
			return vf.String(`produced`)
		}
		require.Equal(t, `produced`,
			strata.Lookup2(iv, []string{`nope`}, nil, nil, nil, nil, options, df).String())
		require.Equal(t, 1, calls)
	})
}

func TestLookup2_defaultProducerNotCalledWhenFound(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		df := func() dgo.Value {
			t.Error(`producer called although a value was found`)
			return nil
		}
		require.Equal(t, `value of first`,
			strata.Lookup2(iv, []string{`first`}, nil, nil, nil, nil, options, df).String())
	})
}

func TestLookup2_defaultProducerSingleName(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		df := func(names dgo.Value) dgo.Value {
			return vf.String(`default for ` + names.String())
		}
		require.Equal(t, `default for nope`,
			strata.Lookup2(iv, []string{`nope`}, nil, nil, nil, nil, options, df).String())
	})
}

func TestLookup2_defaultProducerManyNames(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		df := func(names dgo.Value) dgo.Value {
			return names
		}
		require.Equal(t, vf.Values(`a`, `b`),
			strata.Lookup2(iv, []string{`a`, `b`}, nil, nil, nil, nil, options, df))
	})
}

func TestLookup2_defaultProducerNotCalledOnNull(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		df := func() dgo.Value {
			t.Error(`producer called although a null value was found`)
			return nil
		}
		require.Equal(t, vf.Nil,
			strata.Lookup2(iv, []string{`nothing`}, nil, nil, nil, nil, options, df))
	})
}

func TestLookup2_defaultProducerExplicitNil(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		// an explicit nil value from the producer is a valid terminal result
		df := func() dgo.Value { return vf.Nil }
		require.Equal(t, vf.Nil,
			strata.Lookup2(iv, []string{`nope`}, nil, nil, nil, nil, options, df))
	})
}

func TestLookup2_defaultProducerNilResult(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		df := func() dgo.Value { return nil }
		require.PanicsWithError(t, `did not find a value for the name 'nope'`, func() {
			strata.Lookup2(iv, []string{`nope`}, nil, nil, nil, nil, options, df)
		})
	})
}

func TestLookup2_typeAssertFound(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.PanicsWithError(t, `found value has wrong type, expects an Integer value, got String`, func() {
			strata.Lookup2(iv, []string{`first`}, types.Integer, nil, nil, nil, options, nil)
		})
	})
}

func TestLookup2_typeAssertDefault(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.PanicsWithError(t, `default_value value has wrong type, expects an Integer value, got String`, func() {
			strata.Lookup2(iv, []string{`nope`}, types.Integer, vf.String(`x`), nil, nil, options, nil)
		})
	})
}

func TestLookup2_typeAssertDefaultBlock(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		df := func() dgo.Value { return vf.String(`x`) }
		require.PanicsWithError(t, `default_block value has wrong type, expects an Integer value, got String`, func() {
			strata.Lookup2(iv, []string{`nope`}, types.Integer, nil, nil, nil, options, df)
		})
	})
}

func TestLookupAll(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		v := strata.LookupAll(iv, []string{`first`, `nope`, `array.0`}, nil, nil, nil, options)
		require.Equal(t, vf.Map(`first`, `value of first`, `array.0`, `one`), v)
	})
}

func TestLookupCall_singleName(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `value of first`,
			strata.LookupCall(iv, vf.Map(`name`, `first`)).String())
	})
}

func TestLookupCall_manyNames(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Equal(t, `value of first`,
			strata.LookupCall(iv, vf.Map(`name`, vf.Values(`nope`, `first`))).String())
	})
}

func TestLookupCall_fullForm(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		v := strata.LookupCall(iv, vf.Map(
			`name`, `nope`,
			`value_type`, `String`,
			`default_value`, `fallback`,
			`override`, vf.Map(`other`, `x`),
			`default_values_hash`, vf.Map(`also`, `y`)))
		require.Equal(t, `fallback`, v.String())
	})
}

func TestLookupCall_badName(t *testing.T) {
	testOneLookup(t, func(iv api.Invocation) {
		require.Panics(t, func() {
			strata.LookupCall(iv, vf.Map(`name`, 32))
		})
	})
}

func ExampleLookup_mapProvider() {
	sampleData := map[string]string{
		`a`: `value of a`,
		`b`: `value of b`}

	tp := func(ic sdk.ProviderContext, key string) dgo.Value {
		if v, ok := sampleData[key]; ok {
			return vf.String(v)
		}
		return nil
	}

	strata.DoWithParent(context.Background(), tp, nil, func(hs api.Session) {
		fmt.Println(strata.Lookup(hs.Invocation(nil, nil), `a`, nil, nil))
		fmt.Println(strata.Lookup(hs.Invocation(nil, nil), `b`, nil, nil))
	})

	// Output:
	// value of a
	// value of b
}

func testOneLookup(t *testing.T, f func(i api.Invocation)) {
	t.Helper()
	strata.DoWithParent(context.Background(), provider.YamlLookupKey, options, func(hs api.Session) {
		t.Helper()
		f(hs.Invocation(nil, nil))
	})
}

func testLookup(t *testing.T, f func(hs api.Session)) {
	t.Helper()
	strata.DoWithParent(context.Background(), provider.YamlLookupKey, options, func(hs api.Session) {
		t.Helper()
		f(hs)
	})
}
