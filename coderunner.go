// Package coderunner executes short user-authored JavaScript and Python
// snippets in isolated sandboxes: imports are detected statically, supported
// packages are fetched and loaded on demand, and output is captured as an
// ordered line sequence. The top-level functions here assemble a ready-made
// player; the subpackages expose the individual pieces for callers that need
// finer control.
package coderunner

import (
	"context"
	"log/slog"

	"github.com/pathlab/coderunner/machines/javascript"
	"github.com/pathlab/coderunner/machines/python"
	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/session"
	"github.com/pathlab/coderunner/player"
)

// NewPlayer creates a player with both language machines registered against
// one shared session store.
func NewPlayer(handler slog.Handler, opts ...player.Option) *player.Player {
	store := session.NewStore()

	js := javascript.New(
		javascript.WithLogHandler(handler),
		javascript.WithStore(store),
	)
	py := python.New(
		python.WithLogHandler(handler),
		python.WithStore(store),
	)

	allOpts := append([]player.Option{
		player.WithLogHandler(handler),
		player.WithStore(store),
		player.WithMachine(js),
		player.WithMachine(py),
	}, opts...)

	return player.New(allOpts...)
}

// RunJavaScript runs one JavaScript snippet through a throwaway player.
// Callers that run repeatedly should hold a player instead, so package loads
// are shared across runs.
func RunJavaScript(ctx context.Context, handler slog.Handler, code string) (platform.ExecutionResult, error) {
	return NewPlayer(handler).Run(ctx, code, platform.JavaScript)
}

// RunPython runs one python snippet through a throwaway player. The first
// call boots the WASM interpreter, which dominates the run time; repeat
// callers should hold a player.
func RunPython(ctx context.Context, handler slog.Handler, code string) (platform.ExecutionResult, error) {
	return NewPlayer(handler).Run(ctx, code, platform.Python)
}
