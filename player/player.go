// Package player is the task-player integration: it wires the import parser,
// package loaders, and sandboxed executors into one request/response cycle
// per "Run" action, reporting each phase of the cycle to the UI.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/pathlab/coderunner/internal/helpers"
	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/platform/imports"
	"github.com/pathlab/coderunner/platform/session"
)

// Player orchestrates runs across the registered language machines. It owns
// the session-scoped state the machines share and emits a phase stream the
// UI renders as the console panel and the Run control's enabled state.
type Player struct {
	store    *session.Store
	machines map[platform.Language]platform.Machine
	phase    platform.PhaseFunc

	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithLogHandler sets the slog handler used by the player.
func WithLogHandler(handler slog.Handler) Option {
	return func(p *Player) { p.logHandler = handler }
}

// WithStore sets the session store. The same store should be passed to the
// machines so loaded-package tracking is shared.
func WithStore(s *session.Store) Option {
	return func(p *Player) { p.store = s }
}

// WithMachine registers a language machine. Registering a second machine for
// the same language replaces the first.
func WithMachine(m platform.Machine) Option {
	return func(p *Player) { p.machines[m.Language()] = m }
}

// WithPhaseFunc sets the phase-transition observer.
func WithPhaseFunc(fn platform.PhaseFunc) Option {
	return func(p *Player) { p.phase = fn }
}

// New creates a Player. At least one machine must be registered via
// WithMachine before Run is useful; Run against an unregistered language
// fails with platform.ErrUnknownLanguage.
func New(opts ...Option) *Player {
	p := &Player{
		machines: make(map[platform.Language]platform.Machine),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = session.NewStore()
	}
	p.logHandler, p.logger = helpers.SetupLogger(p.logHandler, "player", "Player")
	return p
}

// Store returns the session store shared with the machines.
func (p *Player) Store() *session.Store {
	return p.store
}

// SwitchLanguage is the language-switch request from the UI: any output or
// error state held by the caller should be discarded, and the code buffer
// reset to the returned default template.
func (p *Player) SwitchLanguage(lang platform.Language) (string, error) {
	if !lang.Valid() {
		return "", fmt.Errorf("%w: %q", platform.ErrUnknownLanguage, lang)
	}
	return DefaultTemplate(lang), nil
}

// Run executes one run cycle: detect imports, boot the runtime if the
// machine needs one, load missing packages, execute, report. The returned
// error is non-nil only for pre-condition failures (unknown language,
// package load, runtime boot); user-code failures complete the cycle and
// land in the result's Error field with a nil error.
//
// starterPackages are identifiers the surrounding task pre-declares; they
// are merged with the detected set before loading.
func (p *Player) Run(ctx context.Context, code string, lang platform.Language, starterPackages ...string) (platform.ExecutionResult, error) {
	runID := uuid.New()
	logger := p.logger.With("run_id", runID, "language", lang)

	machine, ok := p.machines[lang]
	if !ok {
		err := fmt.Errorf("%w: %q", platform.ErrUnknownLanguage, lang)
		p.emit(platform.Phase{Kind: platform.PhaseFailed, RunID: runID, Err: err})
		return platform.ExecutionResult{}, err
	}

	p.emit(platform.Phase{Kind: platform.PhaseDetecting, RunID: runID})
	detected := imports.Detect(code, lang)
	toLoad := mergeIdentifiers(detected, starterPackages)
	logger.DebugContext(ctx, "imports detected", "packages", toLoad)

	if booter, ok := machine.(platform.RuntimeBooter); ok && !booter.Booted() {
		p.emit(platform.Phase{Kind: platform.PhaseBootingRuntime, RunID: runID})
		if err := booter.EnsureRuntime(ctx); err != nil {
			logger.ErrorContext(ctx, "runtime boot failed", "error", err)
			p.emit(platform.Phase{Kind: platform.PhaseFailed, RunID: runID, Err: err})
			return platform.ExecutionResult{}, err
		}
	}

	p.emit(platform.Phase{Kind: platform.PhaseLoadingPackages, RunID: runID, Packages: toLoad})
	skipped, err := machine.LoadPackages(ctx, toLoad)
	if err != nil {
		logger.ErrorContext(ctx, "package load failed", "error", err)
		p.emit(platform.Phase{Kind: platform.PhaseFailed, RunID: runID, Err: err})
		return platform.ExecutionResult{}, err
	}
	if len(skipped) > 0 {
		// Non-fatal: the run proceeds, but the UI is told why those imports
		// did nothing.
		logger.WarnContext(ctx, "unsupported packages skipped", "packages", skipped)
		p.emit(platform.Phase{Kind: platform.PhaseLoadingPackages, RunID: runID, Packages: toLoad, Skipped: skipped})
	}

	p.emit(platform.Phase{Kind: platform.PhaseRunning, RunID: runID})
	result := machine.Execute(ctx, code)

	// A completed execution always reaches the succeeded phase, even when
	// user code crashed: the crash is part of the result, not a failure of
	// the cycle.
	p.emit(platform.Phase{Kind: platform.PhaseSucceeded, RunID: runID, Result: &result})
	logger.InfoContext(ctx, "run complete", "failed", result.Failed(), "lines", len(result.OutputLines))
	return result, nil
}

func (p *Player) emit(phase platform.Phase) {
	if p.phase != nil {
		p.phase(phase)
	}
}

// mergeIdentifiers unions the detected imports with the starter packages,
// preserving the detected order and appending unseen starters sorted.
func mergeIdentifiers(detected, starters []string) []string {
	seen := make(map[string]struct{}, len(detected))
	out := make([]string, 0, len(detected)+len(starters))
	for _, name := range detected {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	extra := make([]string, 0, len(starters))
	for _, name := range starters {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append(out, extra...)
}
