package merge

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// Deep returns the result of merging a with b recursively together with a boolean that is
// true when the returned value differs from a. Hash entries found in both arguments are
// merged recursively and a wins when no further merge is possible. Arrays are concatenated
// into a unique array only when the option merge_hash_arrays is true. All other conflicts
// resolve in favor of a.
func Deep(a, b dgo.Value, opts dgo.Map) (dgo.Value, bool) {
	mha := false
	if opts != nil {
		if o, ok := opts.Get(`merge_hash_arrays`).(dgo.Boolean); ok {
			mha = o.GoBool()
		}
	}
	return deepValue(a, b, mha)
}

func deepValue(a, b dgo.Value, mha bool) (dgo.Value, bool) {
	switch a := a.(type) {
	case dgo.Map:
		if bm, ok := b.(dgo.Map); ok {
			return deepMaps(a, bm, mha)
		}
	case dgo.Array:
		if ba, ok := b.(dgo.Array); ok && mha {
			return deepArrays(a, ba)
		}
	}
	return a, false
}

func deepMaps(a, b dgo.Map, mha bool) (dgo.Value, bool) {
	es := vf.MapWithCapacity(a.Len() + b.Len())
	a.EachEntry(func(e dgo.MapEntry) {
		k := e.Key()
		if bv := b.Get(k); bv != nil {
			if m, changed := deepValue(e.Value(), bv, mha); changed {
				es.Put(k, m)
				return
			}
		}
		es.Put(k, e.Value())
	})
	b.EachEntry(func(e dgo.MapEntry) {
		if !a.ContainsKey(e.Key()) {
			es.Put(e.Key(), e.Value())
		}
	})
	if a.Equals(es) {
		return a, false
	}
	return es, true
}

func deepArrays(a, b dgo.Array) (dgo.Value, bool) {
	if b.Len() == 0 {
		return a, false
	}
	if a.Len() == 0 {
		return b.Unique(), true
	}
	m := a.WithAll(b).Unique()
	if m.Equals(a) {
		return a, false
	}
	return m, true
}
