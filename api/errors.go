package api

import (
	"fmt"
	"strings"
)

// Role describes which resolution layer produced the value that a type violation refers to.
type Role string

// RoleFound is the role of a value found in the override map or the source chain
const RoleFound = Role(`found`)

// RoleDefaultValue is the role of a caller supplied literal default value
const RoleDefaultValue = Role(`default_value`)

// RoleDefaultBlock is the role of a value produced by a deferred default function
const RoleDefaultBlock = Role(`default_block`)

// A NotFoundError is returned when none of the requested names could be resolved through
// any layer of a lookup.
type NotFoundError struct {
	names []string
}

// NotFound creates a NotFoundError for the given names. At least one name must be given.
func NotFound(names ...string) error {
	return &NotFoundError{names: names}
}

func (e *NotFoundError) Error() string {
	if len(e.names) == 1 {
		return fmt.Sprintf(`did not find a value for the name '%s'`, e.names[0])
	}
	qs := make([]string, len(e.names))
	for i, n := range e.names {
		qs[i] = `'` + n + `'`
	}
	return fmt.Sprintf(`did not find a value for any of the names [%s]`, strings.Join(qs, `, `))
}

// Names returns the names that were attempted, in the order they were tried
func (e *NotFoundError) Names() []string {
	return e.names
}

// A WrongTypeError is returned when a resolved value, a default value, or the result of a
// deferred default function does not conform to the expected type of the lookup.
type WrongTypeError struct {
	role   Role
	detail string
}

// WrongType creates a WrongTypeError for the given role. The detail, when not empty, is
// appended to the fixed message prefix.
func WrongType(role Role, detail string) error {
	return &WrongTypeError{role: role, detail: detail}
}

func (e *WrongTypeError) Error() string {
	msg := string(e.role) + ` value has wrong type`
	if e.detail != `` {
		msg += `, ` + e.detail
	}
	return msg
}

// Role returns the resolution layer that produced the offending value
func (e *WrongTypeError) Role() Role {
	return e.role
}

// A MergeError is returned when a merge strategy specification is malformed or when the
// values given to a merge strategy are not of a shape that the strategy can merge.
type MergeError struct {
	msg string
}

func (e *MergeError) Error() string {
	return e.msg
}

// MissingMergeStrategy creates the MergeError used when a merge option is given in hash form
// but the hash has no 'strategy' entry.
func MissingMergeStrategy() error {
	return &MergeError{msg: `hash given as 'merge' must contain the name of a strategy`}
}

// UnknownMergeStrategy creates the MergeError used when a strategy name is not recognized
func UnknownMergeStrategy(name string) error {
	return &MergeError{msg: fmt.Sprintf(`unknown merge strategy '%s'`, name)}
}

// NotMergeable creates the MergeError used when a value found in a source does not have the
// shape that the given strategy requires.
func NotMergeable(strategy, expected string) error {
	return &MergeError{msg: fmt.Sprintf(`merge strategy '%s' requires %s values`, strategy, expected)}
}

// MissingRequiredOption creates an error with a descriptive text and returns it.
func MissingRequiredOption(option string) error {
	return fmt.Errorf(`missing required provider option '%s'`, option)
}

// MissingRequiredEnvironmentVariable creates an error with a descriptive text and returns it.
func MissingRequiredEnvironmentVariable(name string) error {
	return fmt.Errorf(`missing required environment variable '%s'`, name)
}

// YamlNotHash creates an error with a descriptive text and returns it.
func YamlNotHash(path string) error {
	return fmt.Errorf(`file '%s' does not contain a YAML hash`, path)
}

// JSONNotHash creates an error with a descriptive text and returns it.
func JSONNotHash(path string) error {
	return fmt.Errorf(`file '%s' does not contain a JSON object`, path)
}
