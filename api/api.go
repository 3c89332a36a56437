// Package api contains the interfaces and small types that are shared by all strata packages
package api

// StrataRoot is an option key that can be used to change the default root which is the current working directory
const StrataRoot = `Strata::Root`

// StrataConfigFileName is an option that can be used to change the default file name 'strata.yaml'
const StrataConfigFileName = `Strata::ConfigFileName`

// StrataConfig is an option that can be used to change the absolute path of the strata config. When specified,
// StrataRoot and StrataConfigFileName will not have any effect.
const StrataConfig = `Strata::Config`

// StrataScope is an option that can be used to pass a variable scope to the engine. The scope is used
// by the 'scope' lookup_key provider function and when doing variable interpolations
const StrataScope = `Strata::Scope`

// StrataFunctions is an option that can be used to pass custom lookup functions to the engine. The value
// must be a dgo.Map with String keys and Function values.
const StrataFunctions = `Strata::Functions`
