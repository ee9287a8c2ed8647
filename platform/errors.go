package platform

import (
	"errors"
	"fmt"
)

var ErrUnknownLanguage = errors.New("unknown language")

// PackageLoadError reports that a supported package could not be fetched or
// installed. The run is aborted before execution; packages loaded earlier in
// the same batch stay loaded.
type PackageLoadError struct {
	Language Language
	Package  string
	Err      error
}

func (e *PackageLoadError) Error() string {
	return fmt.Sprintf("could not load package %q (%s): %v", e.Package, e.Language, e.Err)
}

func (e *PackageLoadError) Unwrap() error {
	return e.Err
}

// RuntimeInitError reports that the secondary-language engine failed to
// initialize. The failure is never cached; a subsequent boot attempt retries
// from scratch.
type RuntimeInitError struct {
	Err error
}

func (e *RuntimeInitError) Error() string {
	return fmt.Sprintf("runtime initialization failed: %v", e.Err)
}

func (e *RuntimeInitError) Unwrap() error {
	return e.Err
}
