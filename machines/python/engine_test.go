package python

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/fetch"
	"github.com/pathlab/coderunner/platform/session"
)

func newTestEngine(t *testing.T, artifactURL, cacheDir string, store *session.Store) *engine {
	t.Helper()
	if store == nil {
		store = session.NewStore()
	}
	return &engine{
		artifactURL: artifactURL,
		cacheDir:    cacheDir,
		fetcher:     fetch.New(),
		store:       store,
		logger:      slog.Default(),
	}
}

func TestEngineEnsureBootsOnce(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte("not-really-wasm"))
	}))
	defer srv.Close()

	e := newTestEngine(t, srv.URL, "", nil)
	var boots atomic.Int32
	e.boot = func(ctx context.Context, wasm []byte) (*engineHandle, error) {
		boots.Add(1)
		require.Equal(t, []byte("not-really-wasm"), wasm)
		return &engineHandle{}, nil
	}

	require.False(t, e.isBooted())

	h1, err := e.ensure(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h1)
	require.True(t, e.isBooted())

	h2, err := e.ensure(context.Background())
	require.NoError(t, err)
	require.Same(t, h1, h2)

	require.Equal(t, int32(1), boots.Load())
	require.Equal(t, int32(1), fetches.Load())
}

func TestEngineEnsureFailureIsNotCached(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image"))
	}))
	defer srv.Close()

	e := newTestEngine(t, srv.URL, "", nil)
	var calls atomic.Int32
	e.boot = func(ctx context.Context, wasm []byte) (*engineHandle, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boot exploded")
		}
		return &engineHandle{}, nil
	}

	_, err := e.ensure(context.Background())
	require.Error(t, err)
	var initErr *platform.RuntimeInitError
	require.ErrorAs(t, err, &initErr)
	require.False(t, e.isBooted())

	// The retry starts from scratch and succeeds.
	_, err = e.ensure(context.Background())
	require.NoError(t, err)
	require.True(t, e.isBooted())
}

func TestEngineEnsureFetchFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := newTestEngine(t, srv.URL, "", nil)
	_, err := e.ensure(context.Background())

	var initErr *platform.RuntimeInitError
	require.ErrorAs(t, err, &initErr)
	require.ErrorIs(t, err, fetch.ErrArtifactUnavailable)
}

func TestEngineEnsureResetsLoadedPackages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image"))
	}))
	defer srv.Close()

	store := session.NewStore()
	store.MarkLoaded(platform.Python, "numpy")
	store.MarkLoaded(platform.JavaScript, "lodash")

	e := newTestEngine(t, srv.URL, "", store)
	e.boot = func(ctx context.Context, wasm []byte) (*engineHandle, error) {
		return &engineHandle{}, nil
	}

	_, err := e.ensure(context.Background())
	require.NoError(t, err)

	// A fresh engine starts with nothing loaded for python; other
	// languages' state is untouched.
	require.False(t, store.IsLoaded(platform.Python, "numpy"))
	require.True(t, store.IsLoaded(platform.JavaScript, "lodash"))
}

func TestEngineBytesDiskCache(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte("cached-image"))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()

	first := newTestEngine(t, srv.URL, cacheDir, nil)
	data, err := first.engineBytes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("cached-image"), data)
	require.Equal(t, int32(1), fetches.Load())

	// A second engine pointed at the same cache dir never hits the network.
	second := newTestEngine(t, srv.URL, cacheDir, nil)
	data, err = second.engineBytes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("cached-image"), data)
	require.Equal(t, int32(1), fetches.Load())
}

func TestDefaultCacheDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got := defaultCacheDir()
	require.Contains(t, got, dir)

	_, err := os.Stat(dir)
	require.NoError(t, err)
}
