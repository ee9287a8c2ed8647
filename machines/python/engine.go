package python

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/pathlab/coderunner/internal/helpers"
	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/fetch"
	"github.com/pathlab/coderunner/platform/session"
)

// DefaultEngineURL is the fixed artifact the runtime initializer boots: a
// CPython interpreter compiled to WASI.
const DefaultEngineURL = "https://github.com/vmware-labs/webassembly-language-runtimes/releases/download/python%2F3.11.4%2B20230714-11be424/python-3.11.4.wasm"

// engineCacheFile is the on-disk name of the cached interpreter image.
const engineCacheFile = "python-3.11.4.wasm"

// engineHandle is the opaque handle to a booted interpreter: the wazero
// runtime hosting it and the compiled module ready for per-run
// instantiation.
type engineHandle struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

func (h *engineHandle) close(ctx context.Context) {
	if h.runtime != nil {
		_ = h.runtime.Close(ctx)
	}
}

// engine lazily boots the WASM interpreter exactly once per session and
// caches the handle. A failed boot is never cached: the next ensure call
// retries from scratch.
type engine struct {
	artifactURL string
	cacheDir    string
	fetcher     *fetch.Fetcher
	store       *session.Store
	logger      *slog.Logger

	mu     sync.Mutex
	handle *engineHandle

	// boot builds a handle from the interpreter image. Overridable in tests.
	boot func(ctx context.Context, wasm []byte) (*engineHandle, error)
}

// ensure returns the cached handle, booting the engine on first call. On a
// successful boot the python loaded-package set is reset: a fresh engine
// instance starts with nothing marked loaded, even though its builtins are
// technically present.
func (e *engine) ensure(ctx context.Context) (*engineHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle != nil {
		return e.handle, nil
	}

	wasm, err := e.engineBytes(ctx)
	if err != nil {
		return nil, &platform.RuntimeInitError{Err: err}
	}

	boot := e.boot
	if boot == nil {
		boot = defaultBoot
	}
	handle, err := boot(ctx, wasm)
	if err != nil {
		return nil, &platform.RuntimeInitError{Err: err}
	}

	e.handle = handle
	e.store.Reset(platform.Python)
	e.logger.InfoContext(ctx, "engine booted",
		"artifact", e.artifactURL,
		"bytes", len(wasm),
		"checksum", helpers.SHA256Bytes(wasm))
	return handle, nil
}

func (e *engine) isBooted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle != nil
}

func (e *engine) close(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle != nil {
		e.handle.close(ctx)
		e.handle = nil
	}
}

// engineBytes returns the interpreter image, preferring the disk cache so
// repeat boots skip the network. Cache writes are best-effort.
func (e *engine) engineBytes(ctx context.Context) ([]byte, error) {
	var cachePath string
	if e.cacheDir != "" {
		cachePath = filepath.Join(e.cacheDir, engineCacheFile)
		if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
			e.logger.DebugContext(ctx, "engine image loaded from cache",
				"path", cachePath,
				"checksum", helpers.SHA256Bytes(data))
			return data, nil
		}
	}

	data, err := e.fetcher.Fetch(ctx, e.artifactURL)
	if err != nil {
		return nil, fmt.Errorf("fetch engine image: %w", err)
	}

	if cachePath != "" {
		if err := os.MkdirAll(e.cacheDir, 0o755); err == nil {
			_ = os.WriteFile(cachePath, data, 0o644)
		}
	}
	return data, nil
}

func defaultBoot(ctx context.Context, wasm []byte) (*engineHandle, error) {
	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile engine module: %w", err)
	}

	return &engineHandle{runtime: rt, compiled: compiled}, nil
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "coderunner")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "coderunner")
	}
	return filepath.Join(os.TempDir(), "coderunner-cache")
}
