package python

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pathlab/coderunner/platform/fetch"
)

// DefaultIndexURL is the package index queried for fallback installs.
const DefaultIndexURL = "https://pypi.org/pypi"

// wheelInstaller installs packages that do not ship with the engine image:
// it resolves a pure-python wheel through the index, fetches it, and unpacks
// it into the site directory the runtime mounts on every run. The installer
// itself is bootstrapped once before first use.
type wheelInstaller struct {
	fetcher  *fetch.Fetcher
	indexURL string
	siteDir  string
	logger   *slog.Logger

	mu    sync.Mutex
	ready bool
}

// bootstrap prepares the site directory. Idempotent; called before the
// first install of a session.
func (i *wheelInstaller) bootstrap() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.ready {
		return nil
	}
	if err := os.MkdirAll(i.siteDir, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}
	i.ready = true
	return nil
}

// install fetches and unpacks one package by its registry name.
func (i *wheelInstaller) install(ctx context.Context, name string) error {
	if err := validatePackageName(name); err != nil {
		return err
	}
	if err := i.bootstrap(); err != nil {
		return err
	}

	wheelURL, err := i.resolveWheel(ctx, name)
	if err != nil {
		return err
	}

	data, err := i.fetcher.Fetch(ctx, wheelURL)
	if err != nil {
		return fmt.Errorf("fetch wheel: %w", err)
	}

	if err := i.unpack(data); err != nil {
		return fmt.Errorf("unpack wheel: %w", err)
	}
	i.logger.Info("package installed", "package", name, "wheel", wheelURL)
	return nil
}

func validatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidPackageName)
	}
	if strings.ContainsAny(name, ";|&$`/\\ ") {
		return fmt.Errorf("%w: %q", ErrInvalidPackageName, name)
	}
	return nil
}

// indexRelease is the subset of the index's JSON metadata the installer
// reads.
type indexRelease struct {
	URLs []struct {
		URL         string `json:"url"`
		Filename    string `json:"filename"`
		PackageType string `json:"packagetype"`
	} `json:"urls"`
}

// resolveWheel picks a wheel for the package. The runtime cannot load
// native extensions, so only pure-python ("none-any") wheels qualify.
func (i *wheelInstaller) resolveWheel(ctx context.Context, name string) (string, error) {
	meta, err := i.fetcher.Fetch(ctx, i.indexURL+"/"+name+"/json")
	if err != nil {
		return "", fmt.Errorf("query index: %w", err)
	}

	var release indexRelease
	if err := json.Unmarshal(meta, &release); err != nil {
		return "", fmt.Errorf("decode index metadata: %w", err)
	}

	for _, u := range release.URLs {
		if u.PackageType == "bdist_wheel" && strings.HasSuffix(u.Filename, "py3-none-any.whl") {
			return u.URL, nil
		}
	}
	for _, u := range release.URLs {
		if u.PackageType == "bdist_wheel" && strings.Contains(u.Filename, "-none-any.") {
			return u.URL, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoPureWheel, name)
}

// unpack extracts a wheel (a plain zip) into the site directory.
func (i *wheelInstaller) unpack(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	for _, f := range zr.File {
		rel := filepath.Clean(f.Name)
		if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
			return fmt.Errorf("wheel contains unsafe path %q", f.Name)
		}
		dest := filepath.Join(i.siteDir, rel)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return err
		}
	}
	return nil
}
