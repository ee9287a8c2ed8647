package python

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/catalog"
	"github.com/pathlab/coderunner/platform/session"
)

// testCatalog pairs with the stubbed engine the way a custom catalog pairs
// with an image that bundles extra packages: a builtin tier verified by the
// import probe plus a wheel-installed fallback tier.
func testCatalog() *catalog.Catalog {
	return catalog.New(platform.Python, []catalog.Entry{
		{CanonicalName: "numpy", Method: catalog.RuntimeBuiltin},
		{CanonicalName: "pandas", Method: catalog.RuntimeBuiltin},
		{CanonicalName: "scikit-learn", Method: catalog.RuntimeBuiltin},
		{CanonicalName: "emoji", Method: catalog.FallbackInstaller, Locator: "emoji"},
	}, map[string]string{
		"sklearn": "scikit-learn",
	})
}

// runRecorder is a runFn stub that records every piece of source it is asked
// to execute and answers from a script table.
type runRecorder struct {
	mu    sync.Mutex
	runs  []string
	reply func(code string) (string, string, error)
}

func (r *runRecorder) run(ctx context.Context, code string) (string, string, error) {
	r.mu.Lock()
	r.runs = append(r.runs, code)
	r.mu.Unlock()
	if r.reply != nil {
		return r.reply(code)
	}
	return "", "", nil
}

func (r *runRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

// newTestMachine builds a Machine whose engine boots a stub handle and whose
// execution goes through the recorder instead of a real interpreter.
func newTestMachine(t *testing.T, rec *runRecorder) *Machine {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stub-image"))
	}))
	t.Cleanup(srv.Close)

	m := New(
		WithCatalog(testCatalog()),
		WithEngineURL(srv.URL),
		WithCacheDir(""),
		WithSiteDir(t.TempDir()),
	)
	m.engine.boot = func(ctx context.Context, wasm []byte) (*engineHandle, error) {
		return &engineHandle{}, nil
	}
	m.runFn = rec.run
	return m
}

func TestMachineLanguage(t *testing.T) {
	t.Parallel()
	m := newTestMachine(t, &runRecorder{})
	require.Equal(t, platform.Python, m.Language())
}

func TestLoadPackagesBulkBuiltinProbe(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	unsupported, err := m.LoadPackages(context.Background(), []string{"numpy", "pandas"})
	require.NoError(t, err)
	require.Empty(t, unsupported)

	// One bulk probe covers the whole batch.
	runs := rec.recorded()
	require.Len(t, runs, 1)
	require.Equal(t, "import numpy, pandas", runs[0])

	require.True(t, m.store.IsLoaded(platform.Python, "numpy"))
	require.True(t, m.store.IsLoaded(platform.Python, "pandas"))
}

func TestLoadPackagesIdempotent(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	_, err := m.LoadPackages(context.Background(), []string{"numpy"})
	require.NoError(t, err)
	_, err = m.LoadPackages(context.Background(), []string{"numpy"})
	require.NoError(t, err)

	// The second call finds numpy satisfied and never runs a probe.
	require.Len(t, rec.recorded(), 1)
}

func TestLoadPackagesAliasSharesCanonical(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	_, err := m.LoadPackages(context.Background(), []string{"sklearn"})
	require.NoError(t, err)
	require.True(t, m.store.IsLoaded(platform.Python, "scikit-learn"))

	// Re-requesting through the canonical name is a no-op.
	_, err = m.LoadPackages(context.Background(), []string{"scikit-learn"})
	require.NoError(t, err)
	require.Len(t, rec.recorded(), 1)
}

func TestLoadPackagesNamesOffendingBuiltin(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{
		reply: func(code string) (string, string, error) {
			if strings.Contains(code, "pandas") {
				return "", "Traceback (most recent call last):\nModuleNotFoundError: No module named 'pandas'",
					errors.New("exit status 1")
			}
			return "", "", nil
		},
	}
	m := newTestMachine(t, rec)

	_, err := m.LoadPackages(context.Background(), []string{"numpy", "pandas"})
	require.Error(t, err)

	var loadErr *platform.PackageLoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, "pandas", loadErr.Package)
	require.Contains(t, loadErr.Error(), "ModuleNotFoundError")
}

func TestLoadPackagesUnsupported(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	unsupported, err := m.LoadPackages(context.Background(), []string{"left-pad-for-python"})
	require.NoError(t, err)
	require.Equal(t, []string{"left-pad-for-python"}, unsupported)

	// Nothing supported was requested, so the runtime was never probed
	// (and never even booted).
	require.Empty(t, rec.recorded())
	require.False(t, m.Booted())
}

func TestLoadPackagesFallbackInstall(t *testing.T) {
	t.Parallel()

	wheel := buildWheel(t, map[string]string{
		"emoji/__init__.py": "EMOJI = {}\n",
	})
	idx := newIndexServer(t, "emoji", "emoji-2.8.0-py3-none-any.whl", wheel)

	rec := &runRecorder{}
	m := newTestMachine(t, rec)
	m.installer.indexURL = idx.URL

	unsupported, err := m.LoadPackages(context.Background(), []string{"emoji"})
	require.NoError(t, err)
	require.Empty(t, unsupported)
	require.True(t, m.store.IsLoaded(platform.Python, "emoji"))
}

func TestLoadPackagesFallbackFailure(t *testing.T) {
	t.Parallel()

	idx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer idx.Close()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)
	m.installer.indexURL = idx.URL

	_, err := m.LoadPackages(context.Background(), []string{"emoji"})

	var loadErr *platform.PackageLoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, "emoji", loadErr.Package)
	require.False(t, m.store.IsLoaded(platform.Python, "emoji"))
}

func TestExecuteCollectsOutput(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{
		reply: func(code string) (string, string, error) {
			return "hello\nworld\n", "careful now\n", nil
		},
	}
	m := newTestMachine(t, rec)

	result := m.Execute(context.Background(), `print("hello")`)
	require.False(t, result.Failed())
	require.Equal(t, []string{"hello", "world", platform.ErrorLinePrefix + "careful now"}, result.OutputLines)
}

func TestExecuteNoOutputSentinel(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	result := m.Execute(context.Background(), "x = 1")
	require.False(t, result.Failed())
	require.Equal(t, []string{platform.NoOutputMessage}, result.OutputLines)
}

func TestExecuteErrorDiscardsOutput(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{
		reply: func(code string) (string, string, error) {
			stderr := "Traceback (most recent call last):\n" +
				"  File \"main.py\", line 2, in <module>\n" +
				"ZeroDivisionError: division by zero"
			return "partial output\n", stderr, errors.New("exit status 1")
		},
	}
	m := newTestMachine(t, rec)

	result := m.Execute(context.Background(), "print('partial output')\n1/0")
	require.True(t, result.Failed())
	require.Empty(t, result.OutputLines)
	require.Equal(t, "ZeroDivisionError: division by zero", result.Error)
}

func TestExecuteDetectsImports(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	result := m.Execute(context.Background(), "import numpy as np\nfrom bs4 import BeautifulSoup")
	require.Equal(t, []string{"numpy", "bs4"}, result.DetectedPackages)
}

func TestEnsureRuntimeIdempotent(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t, &runRecorder{})
	require.False(t, m.Booted())

	require.NoError(t, m.EnsureRuntime(context.Background()))
	require.True(t, m.Booted())
	require.NoError(t, m.EnsureRuntime(context.Background()))

	m.Close(context.Background())
	require.False(t, m.Booted())
}

func TestMachineSharedStore(t *testing.T) {
	t.Parallel()

	store := session.NewStore()
	rec := &runRecorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stub-image"))
	}))
	defer srv.Close()

	m := New(
		WithStore(store),
		WithCatalog(testCatalog()),
		WithEngineURL(srv.URL),
		WithCacheDir(""),
		WithSiteDir(t.TempDir()),
	)
	m.engine.boot = func(ctx context.Context, wasm []byte) (*engineHandle, error) {
		return &engineHandle{}, nil
	}
	m.runFn = rec.run

	_, err := m.LoadPackages(context.Background(), []string{"numpy"})
	require.NoError(t, err)
	require.Contains(t, store.Loaded(platform.Python), "numpy")
}

func TestLoadPackagesProbesImportableName(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{}
	m := newTestMachine(t, rec)

	// The canonical name is not a valid import identifier; the probe must
	// go through the import alias.
	_, err := m.LoadPackages(context.Background(), []string{"scikit-learn"})
	require.NoError(t, err)

	runs := rec.recorded()
	require.Len(t, runs, 1)
	require.Equal(t, "import sklearn", runs[0])
	require.True(t, m.store.IsLoaded(platform.Python, "scikit-learn"))
}

func TestDefaultCatalogNeverProbesNativePackages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stub-image"))
	}))
	defer srv.Close()

	rec := &runRecorder{}
	m := New(
		WithEngineURL(srv.URL),
		WithCacheDir(""),
		WithSiteDir(t.TempDir()),
	)
	m.engine.boot = func(ctx context.Context, wasm []byte) (*engineHandle, error) {
		return &engineHandle{}, nil
	}
	m.runFn = rec.run

	// The default engine image ships no native-extension packages and no
	// pure wheel exists for them, so the default catalog must report them
	// as unsupported rather than attempt a load that cannot succeed.
	unsupported, err := m.LoadPackages(context.Background(), []string{"numpy", "pandas", "scikit-learn"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"numpy", "pandas", "scikit-learn"}, unsupported)
	require.Empty(t, rec.recorded())
	require.False(t, m.Booted())
}
