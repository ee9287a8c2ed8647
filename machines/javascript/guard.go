package javascript

import "github.com/dop251/goja"

// moduleLoaderGlobals are suppressed while a CDN bundle executes. UMD
// wrappers register against define/module/exports when those bindings are
// visible instead of installing their plain global, which would leave the
// binding lookup empty after the load.
var moduleLoaderGlobals = [...]string{"define", "module", "exports"}

// runWithModuleGuard executes a package bundle with the module-loader
// globals removed, restoring their prior values on every exit path. Loads
// are sequential, so the suppression window never covers two bundles.
func runWithModuleGuard(vm *goja.Runtime, prog *goja.Program) (err error) {
	global := vm.GlobalObject()

	saved := make(map[string]goja.Value, len(moduleLoaderGlobals))
	for _, name := range moduleLoaderGlobals {
		v := global.Get(name)
		if v == nil || goja.IsUndefined(v) {
			continue
		}
		saved[name] = v
		if derr := global.Delete(name); derr != nil {
			return derr
		}
	}

	defer func() {
		for name, v := range saved {
			if serr := global.Set(name, v); serr != nil && err == nil {
				err = serr
			}
		}
	}()

	_, err = vm.RunProgram(prog)
	return err
}
