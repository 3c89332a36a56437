package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/cli"
)

func TestLookup_simple(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `first`)
	require.NoError(t, err)
	require.Equal(t, "value of first\n", string(out))
}

func TestLookup_renderAsText(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--render-as`, `s`, `first`)
	require.NoError(t, err)
	require.Equal(t, "value of first\n", string(out))
}

func TestLookup_renderAsJSON(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--render-as`, `json`, `hash`)
	require.NoError(t, err)
	require.Equal(t, "{\"a\":\"A\",\"b\":\"B\"}\n", string(out))
}

func TestLookup_notFound(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `nonexistent`)
	require.NoError(t, err)
	require.Equal(t, ``, string(out))
}

func TestLookup_default(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--default`, `fallback`, `nonexistent`)
	require.NoError(t, err)
	require.Equal(t, "fallback\n", string(out))
}

func TestLookup_type(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--type`, `Integer`, `count`)
	require.NoError(t, err)
	require.Equal(t, "42\n", string(out))
}

func TestLookup_typeMismatch(t *testing.T) {
	_, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--type`, `Integer`, `first`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `found value has wrong type`)
}

func TestLookup_badType(t *testing.T) {
	_, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--type`, `Struct`, `first`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown type 'Struct'`)
}

func TestLookup_var(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--var`, `who:world`, `ip`)
	require.NoError(t, err)
	require.Equal(t, "hello world\n", string(out))
}

func TestLookup_facts(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--facts`, `testdata/facts.yaml`, `ip`)
	require.NoError(t, err)
	require.Equal(t, "hello world\n", string(out))
}

func TestLookup_all(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--all`, `first`, `count`, `nonexistent`)
	require.NoError(t, err)
	require.Equal(t, "first: value of first\ncount: 42\n", string(out))
}

func TestLookup_allWithType(t *testing.T) {
	_, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--all`, `--type`, `String`, `first`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `type option cannot be combined with the all option`)
}

func TestLookup_explain(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--explain`, `first`)
	require.NoError(t, err)
	require.Contains(t, string(out), `Found key: "first"`)
}

func TestLookup_explainNotFound(t *testing.T) {
	out, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--explain`, `nonexistent`)
	require.NoError(t, err)
	require.Contains(t, string(out), `No such key: "nonexistent"`)
}

func TestLookup_noKey(t *testing.T) {
	_, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`)
	require.Error(t, err)
}

func TestLookup_badMergeHash(t *testing.T) {
	_, err := cli.ExecuteLookup(`--config`, `testdata/strata.yaml`, `--merge`, `bogus`, `first`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown merge strategy 'bogus'`)
}
