package api

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// ToMap coerces the given argument to a frozen dgo.Map. A nil argument yields
// the empty map. The argName is used in the panic that is raised when the
// argument cannot represent a map.
func ToMap(argName string, vi interface{}) dgo.Map {
	value := vf.Value(vi)
	if value == vf.Nil {
		return vf.Map()
	}
	if m, ok := value.(dgo.Map); ok {
		return m
	}
	panic(fmt.Errorf(`%s does not represent a map`, argName))
}
