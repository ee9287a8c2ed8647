// Package javascript implements the JavaScript half of the snippet sandbox:
// a package loader that fetches and compiles CDN bundles, and an executor
// that runs user code in a fresh goja runtime whose only visible bindings
// are a captured console and the package lookup function.
package javascript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/pathlab/coderunner/internal/helpers"
	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/catalog"
	"github.com/pathlab/coderunner/platform/fetch"
	"github.com/pathlab/coderunner/platform/imports"
	"github.com/pathlab/coderunner/platform/session"
)

// lookupFnName is the single function the sandbox exposes for resolving
// packages. Every import/require form in user code is rewritten to a call
// against it before execution.
const lookupFnName = "__loadedPackage"

var _ platform.Machine = (*Machine)(nil)

// Machine loads CDN packages and executes JavaScript snippets.
type Machine struct {
	catalog *catalog.Catalog
	store   *session.Store
	fetcher *fetch.Fetcher

	// programs caches each package's compiled bundle by canonical name.
	// Compilation happens once per session; instantiation happens per run,
	// because goja values are bound to the runtime that created them.
	mu       sync.RWMutex
	programs map[string]*goja.Program

	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogHandler sets the slog handler used by the machine.
func WithLogHandler(handler slog.Handler) Option {
	return func(m *Machine) { m.logHandler = handler }
}

// WithCatalog overrides the default JavaScript package catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(m *Machine) { m.catalog = c }
}

// WithStore sets the session store shared with the orchestrator.
func WithStore(s *session.Store) Option {
	return func(m *Machine) { m.store = s }
}

// WithFetcher overrides the artifact fetcher.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(m *Machine) { m.fetcher = f }
}

// New creates a JavaScript machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		programs: make(map[string]*goja.Program),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.catalog == nil {
		m.catalog = catalog.DefaultJavaScript()
	}
	if m.store == nil {
		m.store = session.NewStore()
	}
	if m.fetcher == nil {
		m.fetcher = fetch.New()
	}
	m.logHandler, m.logger = helpers.SetupLogger(m.logHandler, "javascript", "Machine")
	return m
}

func (m *Machine) String() string {
	return "javascript.Machine"
}

// Language implements platform.Machine.
func (m *Machine) Language() platform.Language {
	return platform.JavaScript
}

// LoadPackages fetches and compiles every supported, not-yet-loaded package.
// Packages are loaded sequentially, one at a time, so the module-global
// suppression window around bundle execution never covers two loads.
// Identifiers absent from the catalog are returned as unsupported; a fetch
// or compile failure aborts with a *platform.PackageLoadError naming the
// package, leaving earlier packages from the batch loaded.
func (m *Machine) LoadPackages(ctx context.Context, names []string) ([]string, error) {
	logger := m.logger.WithGroup("LoadPackages")

	entries, unsupported := m.catalog.Supported(names)
	requested := make([]string, 0, len(entries))
	for name := range entries {
		requested = append(requested, name)
	}
	sort.Strings(requested)

	for _, name := range requested {
		entry := entries[name]
		// The store is shared across machines, but compiled programs are
		// per-machine: only skip when this machine also holds the program,
		// so a second machine over a warm store still compiles its own copy.
		if (m.store.IsLoaded(platform.JavaScript, name) ||
			m.store.IsLoaded(platform.JavaScript, entry.CanonicalName)) &&
			m.hasProgram(entry.CanonicalName) {
			logger.DebugContext(ctx, "package already satisfied", "package", name)
			continue
		}

		data, err := m.fetcher.Fetch(ctx, entry.Locator)
		if err != nil {
			return unsupported, &platform.PackageLoadError{
				Language: platform.JavaScript,
				Package:  entry.CanonicalName,
				Err:      err,
			}
		}

		prog, err := goja.Compile(entry.CanonicalName, string(data), false)
		if err != nil {
			return unsupported, &platform.PackageLoadError{
				Language: platform.JavaScript,
				Package:  entry.CanonicalName,
				Err:      fmt.Errorf("bundle failed to compile: %w", err),
			}
		}

		m.mu.Lock()
		m.programs[entry.CanonicalName] = prog
		m.mu.Unlock()

		// Mark every spelling that should short-circuit a repeat load.
		m.store.MarkLoaded(platform.JavaScript,
			name, strings.ToLower(name),
			entry.CanonicalName, strings.ToLower(entry.CanonicalName))
		logger.InfoContext(ctx, "package loaded",
			"package", entry.CanonicalName,
			"bytes", len(data),
			"checksum", helpers.SHA256Bytes(data))
	}

	return unsupported, nil
}

// hasProgram reports whether this machine holds a compiled bundle for the
// canonical package name.
func (m *Machine) hasProgram(canonical string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.programs[canonical] != nil
}

// Execute runs the snippet in a fresh goja runtime. The runtime carries only
// the captured console, the package lookup function, and whatever globals
// the instantiated package bundles install; the hosting process's state is
// never visible to the snippet, and nothing declared by the snippet survives
// the run. All failures land in the result's Error field.
func (m *Machine) Execute(ctx context.Context, code string) platform.ExecutionResult {
	logger := m.logger.WithGroup("Execute")
	detected := imports.Detect(code, platform.JavaScript)

	vm := goja.New()
	printer := newCapturePrinter()

	registry := require.NewRegistry()
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer))
	registry.Enable(vm)
	console.Enable(vm)
	aliasConsoleInfo(vm)

	table, err := m.instantiatePackages(vm, detected)
	if err != nil {
		return platform.NewErrorResult(err.Error(), detected)
	}

	lookup, err := m.newLookup(vm, table)
	if err != nil {
		return platform.NewErrorResult(err.Error(), detected)
	}
	if err := vm.Set(lookupFnName, lookup); err != nil {
		return platform.NewErrorResult(err.Error(), detected)
	}

	// The async wrapper lets the snippet use top-level await. goja drains
	// the microtask queue before RunString returns, so the promise has
	// settled by the time we inspect it (the sandbox provides no timers, so
	// nothing can keep it pending legitimately).
	rewritten := "(async () => {\n" + rewriteImports(code) + "\n})()"
	logger.DebugContext(ctx, "executing snippet", "chars", len(rewritten), "packages", len(table))

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, runErr := vm.RunString(rewritten)
	close(done)

	if runErr != nil {
		return platform.NewErrorResult(runErrorMessage(runErr), detected)
	}

	if promise, ok := val.Export().(*goja.Promise); ok {
		switch promise.State() {
		case goja.PromiseStateRejected:
			return platform.NewErrorResult(promise.Result().String(), detected)
		case goja.PromiseStatePending:
			return platform.NewErrorResult(
				"execution did not settle: the snippet awaits an operation that never completes", detected)
		}
	}

	return platform.NewSuccessResult(printer.Lines(), detected)
}

// instantiatePackages executes the cached bundle of each detected, loaded
// package inside the run's runtime and reads the exported value from the
// global binding named in its catalog entry. Identifiers without a cached
// program are skipped: either they are unsupported (already reported by the
// loader) or their load failed and aborted the run before execution.
func (m *Machine) instantiatePackages(vm *goja.Runtime, detected []string) (map[string]goja.Value, error) {
	table := make(map[string]goja.Value, len(detected))
	for _, name := range detected {
		entry, ok := m.catalog.Lookup(name)
		if !ok {
			continue
		}
		if _, done := table[entry.CanonicalName]; done {
			continue
		}

		m.mu.RLock()
		prog := m.programs[entry.CanonicalName]
		m.mu.RUnlock()
		if prog == nil {
			continue
		}

		if err := runWithModuleGuard(vm, prog); err != nil {
			return nil, &platform.PackageLoadError{
				Language: platform.JavaScript,
				Package:  entry.CanonicalName,
				Err:      err,
			}
		}
		table[entry.CanonicalName] = vm.GlobalObject().Get(entry.Binding)
	}
	return table, nil
}

// runErrorMessage extracts a user-facing message from a goja failure.
func runErrorMessage(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc.Value().String()
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprintf("execution interrupted: %v", interrupted.Value())
	}
	return err.Error()
}
