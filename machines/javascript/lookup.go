package javascript

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// missingPackageFactory builds the value returned for identifiers that were
// detected but never loaded (unsupported packages). The run already reported
// them as skipped, so binding one is harmless; the error fires only if the
// snippet actually dereferences or calls the missing package.
const missingPackageFactory = `(function(name) {
	var fail = function() {
		throw new Error("package '" + name + "' is not loaded");
	};
	return new Proxy(fail, {
		get: function(target, prop) {
			if (typeof prop === "symbol") {
				return undefined;
			}
			if (prop === "toString" || prop === "valueOf") {
				return function() { return "[package '" + name + "' is not loaded]"; };
			}
			fail();
		},
		apply: fail,
		construct: fail
	});
})`

// newLookup builds the package lookup function exposed to the sandbox as
// the only way to reach loaded packages. Resolution order: exact canonical
// match, then case-insensitive. A package that is present in the table but
// bound to an empty value (the CDN bundle set the wrong global) raises a
// distinct "loaded but empty" error to aid debugging.
func (m *Machine) newLookup(vm *goja.Runtime, table map[string]goja.Value) (func(goja.FunctionCall) goja.Value, error) {
	factoryVal, err := vm.RunString(missingPackageFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare package lookup: %w", err)
	}
	factory, ok := goja.AssertFunction(factoryVal)
	if !ok {
		return nil, fmt.Errorf("failed to prepare package lookup: factory is not callable")
	}

	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()

		if v, found := m.resolveFromTable(table, name); found {
			if isEmptyValue(v) {
				panic(vm.NewGoError(fmt.Errorf(
					"package %q was loaded but its global binding is empty; the bundle did not install the expected global", name)))
			}
			return v
		}

		missing, err := factory(goja.Undefined(), vm.ToValue(name))
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return missing
	}, nil
}

func (m *Machine) resolveFromTable(table map[string]goja.Value, name string) (goja.Value, bool) {
	canonical := m.catalog.Resolve(name)
	if v, ok := table[canonical]; ok {
		return v, true
	}
	lower := strings.ToLower(canonical)
	for k, v := range table {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return nil, false
}

func isEmptyValue(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}
