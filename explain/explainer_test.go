package explain_test

import (
	"testing"

	"github.com/lyraproj/dgo/vf"
	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/explain"
)

func TestExplainer_found(t *testing.T) {
	ex := explain.NewExplainer(false, false)
	ex.PushLookup(api.NewKey(`the.key`))
	ex.AcceptFound(`the.key`, vf.String(`the value`))
	ex.Pop()

	s := ex.String()
	require.Contains(t, s, `Searching for "the.key"`)
	require.Contains(t, s, `Found key: "the.key" value: "the value"`)
}

func TestExplainer_notFound(t *testing.T) {
	ex := explain.NewExplainer(false, false)
	ex.PushLookup(api.NewKey(`gone`))
	ex.AcceptNotFound(`gone`)
	ex.Pop()

	require.Contains(t, ex.String(), `No such key: "gone"`)
}

func TestExplainer_foundInOverrides(t *testing.T) {
	ex := explain.NewExplainer(false, false)
	ex.PushLookup(api.NewKey(`a`))
	ex.AcceptFoundInOverrides(`a`, vf.String(`v`))
	ex.Pop()

	require.Contains(t, ex.String(), `Found key: "a" value: "v" in overrides`)
}

func TestExplainer_foundInDefaults(t *testing.T) {
	ex := explain.NewExplainer(false, false)
	ex.PushLookup(api.NewKey(`a`))
	ex.AcceptFoundInDefaults(`a`, vf.String(`v`))
	ex.Pop()

	require.Contains(t, ex.String(), `Found key: "a" value: "v" in defaults`)
}

func TestExplainer_interpolation(t *testing.T) {
	ex := explain.NewExplainer(false, false)
	ex.PushLookup(api.NewKey(`greeting`))
	ex.PushInterpolation(`%{who}`)
	ex.Pop()
	ex.AcceptFound(`greeting`, vf.String(`hello world`))
	ex.Pop()

	require.Contains(t, ex.String(), `Interpolation on "%{who}"`)
}

func TestExplainer_mergeSource(t *testing.T) {
	ex := explain.NewExplainer(true, false)
	ex.PushLookup(api.NewKey(`a`))
	ex.AcceptMergeSource(`CLI option`)
	ex.AcceptFound(`a`, vf.String(`v`))
	ex.Pop()

	require.Contains(t, ex.String(), `Using merge options from CLI option`)
}

func TestExplainer_text(t *testing.T) {
	ex := explain.NewExplainer(false, false)
	ex.PushLookup(api.NewKey(`a`))
	ex.AcceptText(`unresolved function 'my_func'`)
	ex.Pop()

	require.Contains(t, ex.String(), `unresolved function 'my_func'`)
}
