package provider

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/hierasdk/hiera"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
)

// ModulePath is the session option that the ModuleLookupKey function uses as the module path.
// The value must be a string with paths separated with the OS-specific path separator.
const ModulePath = `strata::lookup::modulepath`

const moduleProvidersKey = `strata::moduleproviders`

// ModuleLookupKey is a lookup_key function that performs a lookup in modules. The function
// expects a key with multiple segments separated by a double colon '::'. The first segment is
// considered the name of a module and that module must be found in the path stored as the
// ModulePath option. If such a path exists and is a directory that in turn contains a
// strata.yaml file, then a lookup will be performed in that module.
func ModuleLookupKey(pc hiera.ProviderContext, key string) dgo.Value {
	ci := strings.Index(key, `::`)
	if ci <= 0 {
		return nil
	}
	sc := pc.(api.ServerContext)
	modName := strings.ToLower(key[:ci])
	mp := moduleProvider(sc, modName)
	iv := sc.Invocation()
	return iv.WithModule(modName, func() dgo.Value {
		if mp == noModuleFunc {
			iv.ReportModuleNotFound()
			return nil
		}
		return mp.Call(vf.MutableValues(pc, key))[0]
	})
}

// noModuleFunc is cached for module names that have no module so that the
// module path is only scanned once per name
var noModuleFunc = vf.Value(func(pc hiera.ProviderContext, key string) dgo.Value { return nil }).(dgo.Function)

// moduleProvider returns the cached lookup_key function for the named module,
// scanning the module path on the first request for each name
func moduleProvider(sc api.ServerContext, modName string) dgo.Function {
	var mpm dgo.Map
	if c, ok := sc.CachedValue(moduleProvidersKey); ok {
		mpm = c.(dgo.Map)
	} else {
		mpm = vf.MutableMap()
		sc.Cache(moduleProvidersKey, mpm)
	}
	if f := mpm.Get(modName); f != nil {
		return f.(dgo.Function)
	}

	mp := noModuleFunc
	if modulePath, ok := sc.Invocation().SessionOptions().Get(ModulePath).(dgo.String); ok {
		for _, dir := range filepath.SplitList(modulePath.GoString()) {
			if configPath, found := findModuleConfig(dir, modName); found {
				mp = moduleConfigFunc(configPath, modName)
				break
			}
		}
	}
	mpm.Put(modName, mp)
	return mp
}

// findModuleConfig scans dir for a subdirectory whose name equals the module name,
// compared case insensitively, and that holds a configuration file
func findModuleConfig(dir, moduleName string) (string, bool) {
	f, err := os.Open(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ``, false
		}
		panic(err)
	}
	fileInfos, err := f.Readdir(-1)
	_ = f.Close()
	if err != nil {
		panic(err)
	}

	for _, fi := range fileInfos {
		if !strings.EqualFold(fi.Name(), moduleName) {
			continue
		}
		if !fi.IsDir() {
			break
		}
		configPath := filepath.Join(dir, fi.Name(), config.FileName)
		cf, err := os.Lstat(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			panic(err)
		}
		if cf.IsDir() {
			break
		}
		return configPath, true
	}
	return ``, false
}

func moduleConfigFunc(configPath, moduleName string) dgo.Function {
	return vf.Value(
		func(pc hiera.ProviderContext, key string) dgo.Value {
			if sc, ok := pc.(api.ServerContext); ok {
				return ChainLookupKeyAt(sc, configPath, key, moduleName)
			}
			return nil
		}).(dgo.Function)
}
