package platform

import "github.com/google/uuid"

// PhaseKind labels one step of the run cycle as seen by the UI.
type PhaseKind string

const (
	PhaseDetecting       PhaseKind = "detecting"
	PhaseLoadingPackages PhaseKind = "loadingPackages"
	PhaseBootingRuntime  PhaseKind = "bootingRuntime"
	PhaseRunning         PhaseKind = "running"
	PhaseSucceeded       PhaseKind = "succeeded"
	PhaseFailed          PhaseKind = "failed"
)

// Phase is one transition in the run cycle. RunID ties all transitions of a
// single run together.
type Phase struct {
	Kind  PhaseKind
	RunID uuid.UUID

	// Packages lists the identifiers being loaded (PhaseLoadingPackages).
	Packages []string

	// Skipped lists detected identifiers that are not in the catalog and
	// were excluded from loading (PhaseLoadingPackages).
	Skipped []string

	// Result carries the completed run outcome (PhaseSucceeded).
	Result *ExecutionResult

	// Err carries the pre-condition failure (PhaseFailed): a package load
	// or runtime boot rejection, never a user-code error.
	Err error
}

// PhaseFunc receives phase transitions. A nil PhaseFunc is valid and means
// the caller does not observe phases.
type PhaseFunc func(Phase)
