// Package types contains the structural type descriptors that lookups use to assert the
// shape of found values and defaults. The set of descriptors is closed: a descriptor is
// either one of the primitive kinds or an Optional, Array, or Hash composition of other
// descriptors.
package types

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// A Type is a structural type descriptor. Instance checks are recursive for the composite
// descriptors and purely structural; no coercion takes place.
type Type interface {
	fmt.Stringer

	// Instance returns true when the given value conforms to this descriptor
	Instance(value dgo.Value) bool
}

type primitive int

const (
	anyPrim primitive = iota
	undefPrim
	booleanPrim
	stringPrim
	integerPrim
	floatPrim
	numericPrim
	scalarPrim
	dataPrim
)

var primitiveNames = map[primitive]string{
	anyPrim:     `Any`,
	undefPrim:   `Undef`,
	booleanPrim: `Boolean`,
	stringPrim:  `String`,
	integerPrim: `Integer`,
	floatPrim:   `Float`,
	numericPrim: `Numeric`,
	scalarPrim:  `Scalar`,
	dataPrim:    `Data`,
}

// Any matches every value, including undef
var Any Type = anyPrim

// Undef matches only the no-value sentinel
var Undef Type = undefPrim

// Boolean matches boolean values
var Boolean Type = booleanPrim

// String matches string values
var String Type = stringPrim

// Integer matches integer values
var Integer Type = integerPrim

// Float matches float values
var Float Type = floatPrim

// Numeric matches integer and float values
var Numeric Type = numericPrim

// Scalar matches string, numeric, and boolean values
var Scalar Type = scalarPrim

// Data matches the values that can be expressed in plain YAML or JSON documents: scalars,
// undef, arrays of Data, and string-keyed hashes of Data
var Data Type = dataPrim

type optionalType struct {
	typ Type
}

type arrayType struct {
	elem Type
}

type hashType struct {
	key   Type
	value Type
}

// Optional returns a descriptor that matches undef in addition to what the given
// descriptor matches
func Optional(t Type) Type {
	return &optionalType{typ: t}
}

// ArrayOf returns a descriptor for arrays whose elements all conform to the given
// descriptor
func ArrayOf(elem Type) Type {
	return &arrayType{elem: elem}
}

// HashOf returns a descriptor for hashes whose keys and values all conform to the given
// descriptors
func HashOf(key, value Type) Type {
	return &hashType{key: key, value: value}
}

func isUndef(v dgo.Value) bool {
	return v == nil || vf.Nil.Equals(v)
}

func isData(v dgo.Value) bool {
	switch v := v.(type) {
	case dgo.String, dgo.Integer, dgo.Float, dgo.Boolean:
		return true
	case dgo.Array:
		ok := true
		v.Each(func(e dgo.Value) {
			if ok {
				ok = isData(e)
			}
		})
		return ok
	case dgo.Map:
		ok := true
		v.EachEntry(func(e dgo.MapEntry) {
			if ok {
				_, isStr := e.Key().(dgo.String)
				ok = isStr && isData(e.Value())
			}
		})
		return ok
	default:
		return isUndef(v)
	}
}

func (p primitive) Instance(v dgo.Value) bool {
	switch p {
	case anyPrim:
		return true
	case undefPrim:
		return isUndef(v)
	case booleanPrim:
		_, ok := v.(dgo.Boolean)
		return ok
	case stringPrim:
		_, ok := v.(dgo.String)
		return ok
	case integerPrim:
		_, ok := v.(dgo.Integer)
		return ok
	case floatPrim:
		_, ok := v.(dgo.Float)
		return ok
	case numericPrim:
		switch v.(type) {
		case dgo.Integer, dgo.Float:
			return true
		}
		return false
	case scalarPrim:
		switch v.(type) {
		case dgo.String, dgo.Integer, dgo.Float, dgo.Boolean:
			return true
		}
		return false
	default:
		return isData(v)
	}
}

func (p primitive) String() string {
	return primitiveNames[p]
}

func (t *optionalType) Instance(v dgo.Value) bool {
	return isUndef(v) || t.typ.Instance(v)
}

func (t *optionalType) String() string {
	return `Optional[` + t.typ.String() + `]`
}

func (t *arrayType) Instance(v dgo.Value) bool {
	a, ok := v.(dgo.Array)
	if !ok {
		return false
	}
	if t.elem == Any {
		return true
	}
	all := true
	a.Each(func(e dgo.Value) {
		if all {
			all = t.elem.Instance(e)
		}
	})
	return all
}

func (t *arrayType) String() string {
	if t.elem == Any {
		return `Array`
	}
	return `Array[` + t.elem.String() + `]`
}

func (t *hashType) Instance(v dgo.Value) bool {
	m, ok := v.(dgo.Map)
	if !ok {
		return false
	}
	if t.key == Any && t.value == Any {
		return true
	}
	all := true
	m.EachEntry(func(e dgo.MapEntry) {
		if all {
			all = t.key.Instance(e.Key()) && t.value.Instance(e.Value())
		}
	})
	return all
}

func (t *hashType) String() string {
	if t.key == Any && t.value == Any {
		return `Hash`
	}
	return `Hash[` + t.key.String() + `,` + t.value.String() + `]`
}
