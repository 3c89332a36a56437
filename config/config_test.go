package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
)

func TestNew(t *testing.T) {
	c := config.New(filepath.Join(`testdata`, `strata.yaml`))
	require.Equal(t, `testdata`, c.Root())
	require.Equal(t, filepath.Join(`testdata`, `strata.yaml`), c.Path())
	require.Equal(t, `strata_data`, c.Defaults().DataDir())

	tiers := c.Tiers()
	require.Equal(t, 3, len(tiers))
	require.Equal(t, `One`, tiers[0].Name())
	require.Equal(t, `Two`, tiers[1].Name())
	require.Equal(t, `Globbed`, tiers[2].Name())

	require.Equal(t, 1, len(tiers[0].Locations()))
	require.Equal(t, 2, len(tiers[1].Locations()))
	require.Equal(t, api.LcPath, tiers[0].Locations()[0].Kind())
	require.Equal(t, api.LcGlob, tiers[2].Locations()[0].Kind())
	require.Equal(t, api.KindDataHash, tiers[2].Function().Kind())
	require.Equal(t, `json_data`, tiers[2].Function().Name())
}

func TestNew_missingFileYieldsDefault(t *testing.T) {
	c := config.New(filepath.Join(`testdata`, `nonexistent`, `strata.yaml`))
	require.Equal(t, filepath.Join(`testdata`, `nonexistent`), c.Root())
	tiers := c.Tiers()
	require.Equal(t, 1, len(tiers))
	require.Equal(t, `Common`, tiers[0].Name())
	require.Equal(t, `yaml_data`, c.Defaults().Function().Name())
}

func TestNew_duplicateTierName(t *testing.T) {
	require.PanicsWithError(t, `tier name 'Common' defined more than once`, func() {
		config.New(filepath.Join(`testdata`, `duplicate.yaml`))
	})
}

func TestNew_reservedOptionKey(t *testing.T) {
	require.PanicsWithError(t, `option key 'path' used in tier 'Common' is reserved`, func() {
		config.New(filepath.Join(`testdata`, `reserved.yaml`))
	})
}

func TestNew_badVersion(t *testing.T) {
	require.Panics(t, func() {
		config.New(filepath.Join(`testdata`, `badversion.yaml`))
	})
}
