package python

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
)

// bootstrapScript is the entrypoint the interpreter runs on every execution.
// It compiles the user snippet with top-level-await enabled, so `await` at
// module scope works the same as in an async REPL. The snippet itself is
// mounted alongside as main.py.
const bootstrapScript = `import ast
import asyncio
import sys

with open("/app/main.py", "r") as f:
    source = f.read()

flags = ast.PyCF_ALLOW_TOP_LEVEL_AWAIT
code = compile(source, "main.py", "exec", flags=flags)
ns = {"__name__": "__main__"}
result = eval(code, ns)
if asyncio.iscoroutine(result):
    asyncio.new_event_loop().run_until_complete(result)
`

// runWasm instantiates the compiled interpreter module for one run: the
// snippet and bootstrap are staged in a throwaway directory mounted
// read-only at /app, the session's site directory is mounted read-only at
// /packages, and stdio goes to per-run buffers. Instantiation runs in its
// own goroutine so a cancelled context tears the module down mid-run.
func (m *Machine) runWasm(ctx context.Context, code string) (string, string, error) {
	handle, err := m.engine.ensure(ctx)
	if err != nil {
		return "", "", err
	}

	workDir, err := os.MkdirTemp("", "coderunner-py-*")
	if err != nil {
		return "", "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, "main.py"), []byte(code), 0o644); err != nil {
		return "", "", fmt.Errorf("stage snippet: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "bootstrap.py"), []byte(bootstrapScript), 0o644); err != nil {
		return "", "", fmt.Errorf("stage bootstrap: %w", err)
	}
	if err := os.MkdirAll(m.siteDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create site dir: %w", err)
	}

	var stdout, stderr bytes.Buffer
	fsCfg := wazero.NewFSConfig().
		WithReadOnlyDirMount(workDir, "/app").
		WithReadOnlyDirMount(m.siteDir, "/packages")

	modCfg := wazero.NewModuleConfig().
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithFSConfig(fsCfg).
		WithEnv("PYTHONPATH", "/packages").
		WithEnv("PYTHONDONTWRITEBYTECODE", "1").
		WithArgs("python", "/app/bootstrap.py").
		WithName("")

	errCh := make(chan error, 1)
	go func() {
		mod, runErr := handle.runtime.InstantiateModule(ctx, handle.compiled, modCfg)
		if mod != nil {
			_ = mod.Close(ctx)
		}
		errCh <- runErr
	}()

	select {
	case <-ctx.Done():
		<-errCh
		return stdout.String(), stderr.String(), ctx.Err()
	case runErr := <-errCh:
		if exitErr, ok := runErr.(*sys.ExitError); ok && exitErr.ExitCode() == 0 {
			runErr = nil
		}
		return stdout.String(), stderr.String(), runErr
	}
}

func defaultSiteDir(cacheDir string) string {
	if cacheDir == "" {
		return filepath.Join(os.TempDir(), "coderunner-site")
	}
	return filepath.Join(cacheDir, "site-packages")
}
