package platform

import "context"

// Machine pairs a package resolver/loader with a sandboxed executor for one
// language. Implementations hold per-session state (loaded-package tracking,
// compiled artifacts, runtime handles) and are not tied to any UI.
type Machine interface {
	// Language returns the language this machine executes.
	Language() Language

	// LoadPackages ensures every supported identifier in names is loaded,
	// skipping those already satisfied in the session. Identifiers absent
	// from the catalog are returned as unsupported and do not fail the call;
	// a fetch or install failure for a supported package aborts with a
	// *PackageLoadError naming it. Loading is sequential and there is no
	// rollback of packages loaded earlier in the batch.
	LoadPackages(ctx context.Context, names []string) (unsupported []string, err error)

	// Execute runs the snippet in an isolated scope and captures its output.
	// It never panics and never reports user-code failures through an error
	// return: every failure mode lands in the result's Error field.
	Execute(ctx context.Context, code string) ExecutionResult
}

// RuntimeBooter is implemented by machines whose engine requires an explicit
// boot step (the WASM-hosted python interpreter). The orchestrator uses it
// to surface a distinct "booting" phase on the first run.
type RuntimeBooter interface {
	// Booted reports whether the engine is already initialized.
	Booted() bool

	// EnsureRuntime boots the engine if needed. Idempotent; a failed boot is
	// not cached, so calling again retries from scratch.
	EnsureRuntime(ctx context.Context) error
}
