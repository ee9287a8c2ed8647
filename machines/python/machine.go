// Package python implements the python half of the snippet sandbox: a
// lazily-booted WASM-hosted CPython interpreter, a builtin/wheel package
// loader, and an executor that runs snippets with redirected stdio.
package python

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pathlab/coderunner/internal/helpers"
	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/catalog"
	"github.com/pathlab/coderunner/platform/fetch"
	"github.com/pathlab/coderunner/platform/imports"
	"github.com/pathlab/coderunner/platform/session"
)

var (
	_ platform.Machine       = (*Machine)(nil)
	_ platform.RuntimeBooter = (*Machine)(nil)
)

// Machine loads python packages and executes python snippets.
type Machine struct {
	catalog   *catalog.Catalog
	store     *session.Store
	fetcher   *fetch.Fetcher
	engine    *engine
	installer *wheelInstaller

	engineURL   string
	indexURL    string
	cacheDir    string
	cacheDirSet bool
	siteDir     string

	logHandler slog.Handler
	logger     *slog.Logger

	// runFn executes one piece of python source and returns its stdio.
	// Defaults to runWasm; overridable in tests.
	runFn func(ctx context.Context, code string) (stdout, stderr string, err error)
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogHandler sets the slog handler used by the machine.
func WithLogHandler(handler slog.Handler) Option {
	return func(m *Machine) { m.logHandler = handler }
}

// WithCatalog overrides the default python package catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(m *Machine) { m.catalog = c }
}

// WithStore sets the session store shared with the orchestrator.
func WithStore(s *session.Store) Option {
	return func(m *Machine) { m.store = s }
}

// WithFetcher overrides the artifact fetcher used for the engine image,
// index metadata, and wheels.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(m *Machine) { m.fetcher = f }
}

// WithEngineURL overrides the interpreter image artifact URL.
func WithEngineURL(url string) Option {
	return func(m *Machine) { m.engineURL = url }
}

// WithIndexURL overrides the package index queried for fallback installs.
func WithIndexURL(url string) Option {
	return func(m *Machine) { m.indexURL = url }
}

// WithCacheDir overrides where the engine image is cached on disk. An empty
// string disables the disk cache.
func WithCacheDir(dir string) Option {
	return func(m *Machine) {
		m.cacheDir = dir
		m.cacheDirSet = true
	}
}

// WithSiteDir overrides the directory installed packages are unpacked into.
func WithSiteDir(dir string) Option {
	return func(m *Machine) { m.siteDir = dir }
}

// New creates a python machine.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	if m.catalog == nil {
		m.catalog = catalog.DefaultPython()
	}
	if m.store == nil {
		m.store = session.NewStore()
	}
	if m.fetcher == nil {
		m.fetcher = fetch.New()
	}
	if m.engineURL == "" {
		m.engineURL = DefaultEngineURL
	}
	if m.indexURL == "" {
		m.indexURL = DefaultIndexURL
	}
	if !m.cacheDirSet {
		m.cacheDir = defaultCacheDir()
	}
	if m.siteDir == "" {
		m.siteDir = defaultSiteDir(m.cacheDir)
	}
	m.logHandler, m.logger = helpers.SetupLogger(m.logHandler, "python", "Machine")

	m.engine = &engine{
		artifactURL: m.engineURL,
		cacheDir:    m.cacheDir,
		fetcher:     m.fetcher,
		store:       m.store,
		logger:      m.logger.WithGroup("engine"),
	}
	m.installer = &wheelInstaller{
		fetcher:  m.fetcher,
		indexURL: m.indexURL,
		siteDir:  m.siteDir,
		logger:   m.logger.WithGroup("installer"),
	}
	m.runFn = m.runWasm
	return m
}

func (m *Machine) String() string {
	return "python.Machine"
}

// Language implements platform.Machine.
func (m *Machine) Language() platform.Language {
	return platform.Python
}

// Booted implements platform.RuntimeBooter.
func (m *Machine) Booted() bool {
	return m.engine.isBooted()
}

// EnsureRuntime implements platform.RuntimeBooter. Idempotent; a failed
// boot is not cached and the next call retries from scratch.
func (m *Machine) EnsureRuntime(ctx context.Context) error {
	_, err := m.engine.ensure(ctx)
	return err
}

// Close releases the booted engine, if any.
func (m *Machine) Close(ctx context.Context) {
	m.engine.close(ctx)
}

// LoadPackages partitions supported identifiers into runtime builtins
// (verified with one bulk import probe) and fallback-installable packages
// (installed individually through the wheel installer). Identifiers absent
// from the catalog are returned as unsupported; an install or probe failure
// aborts with a *platform.PackageLoadError naming the package, without
// rolling back siblings that already loaded.
func (m *Machine) LoadPackages(ctx context.Context, names []string) ([]string, error) {
	entries, unsupported := m.catalog.Supported(names)

	requested := make([]string, 0, len(entries))
	for name := range entries {
		requested = append(requested, name)
	}
	sort.Strings(requested)

	var builtins []string
	var fallback []string
	for _, name := range requested {
		entry := entries[name]
		if m.store.IsLoaded(platform.Python, name) ||
			m.store.IsLoaded(platform.Python, entry.CanonicalName) {
			continue
		}
		switch entry.Method {
		case catalog.RuntimeBuiltin:
			builtins = append(builtins, name)
		case catalog.FallbackInstaller:
			fallback = append(fallback, name)
		}
	}

	if len(builtins) == 0 && len(fallback) == 0 {
		return unsupported, nil
	}

	if err := m.EnsureRuntime(ctx); err != nil {
		return unsupported, err
	}

	if len(builtins) > 0 {
		if err := m.loadBuiltins(ctx, builtins, entries); err != nil {
			return unsupported, err
		}
	}

	for _, name := range fallback {
		entry := entries[name]
		if err := m.installer.install(ctx, entry.Locator); err != nil {
			return unsupported, &platform.PackageLoadError{
				Language: platform.Python,
				Package:  entry.CanonicalName,
				Err:      err,
			}
		}
		m.store.MarkLoaded(platform.Python, name, entry.CanonicalName)
	}

	return unsupported, nil
}

// loadBuiltins verifies the builtin batch with a single bulk import. On
// failure it probes each module individually so the error names the
// offending package rather than the whole batch.
func (m *Machine) loadBuiltins(ctx context.Context, ids []string, entries map[string]catalog.Entry) error {
	modules := make([]string, len(ids))
	for i, id := range ids {
		modules[i] = m.probeModule(id, entries[id])
	}

	probe := "import " + strings.Join(modules, ", ")
	if _, stderr, err := m.runFn(ctx, probe); err != nil {
		for i, id := range ids {
			if _, perr := m.probeBuiltin(ctx, modules[i]); perr != nil {
				return &platform.PackageLoadError{
					Language: platform.Python,
					Package:  entries[id].CanonicalName,
					Err:      perr,
				}
			}
		}
		return &platform.PackageLoadError{
			Language: platform.Python,
			Package:  strings.Join(ids, ","),
			Err:      fmt.Errorf("builtin load failed: %s", lastLine(stderr, err)),
		}
	}

	for _, id := range ids {
		m.store.MarkLoaded(platform.Python, id, entries[id].CanonicalName)
	}
	return nil
}

func (m *Machine) probeBuiltin(ctx context.Context, module string) (string, error) {
	stdout, stderr, err := m.runFn(ctx, "import "+module)
	if err != nil {
		return stdout, errors.New(lastLine(stderr, err))
	}
	return stdout, nil
}

// probeModule picks the identifier to import when verifying a builtin. The
// requested identifier is usually importable as-is; canonical names that are
// not valid identifiers ("scikit-learn") probe through their import alias.
func (m *Machine) probeModule(requested string, entry catalog.Entry) string {
	if !strings.Contains(requested, "-") {
		return requested
	}
	return m.catalog.ImportName(entry.CanonicalName)
}

// Execute runs the snippet through the interpreter with redirected stdio.
// Stdout becomes plain output lines, stderr lines are tagged with the error
// marker, and the per-run buffers guarantee the next run starts clean. All
// failures land in the result's Error field.
func (m *Machine) Execute(ctx context.Context, code string) platform.ExecutionResult {
	detected := imports.Detect(code, platform.Python)

	stdout, stderr, err := m.runFn(ctx, code)
	if err != nil {
		return platform.NewErrorResult(lastLine(stderr, err), detected)
	}
	return platform.NewSuccessResult(collectOutput(stdout, stderr), detected)
}

// collectOutput splits both streams into non-empty lines, tagging stderr
// lines so the UI can style them.
func collectOutput(stdout, stderr string) []string {
	var lines []string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, platform.ErrorLinePrefix+line)
		}
	}
	return lines
}

// lastLine extracts the most useful failure message: the final non-empty
// stderr line (the exception summary in a python traceback), falling back
// to the host error.
func lastLine(stderr string, err error) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	if err != nil {
		return err.Error()
	}
	return "execution failed"
}
