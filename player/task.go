package player

import (
	"context"

	"github.com/pathlab/coderunner/platform"
)

// Task is the read-only slice of the surrounding application's day/task
// structure that the player consumes. The player reads exactly these fields
// and does not validate or own the rest of the shape.
type Task struct {
	Title       string
	Description string
	Language    platform.Language

	// InitialCode is the starter snippet shown in the editor. Empty means
	// the language's default template applies.
	InitialCode string

	// StarterPackages are identifiers the task pre-declares so they load
	// even before the user types an import.
	StarterPackages []string
}

// Code returns the snippet the editor starts from.
func (t Task) Code() string {
	if t.InitialCode != "" {
		return t.InitialCode
	}
	return DefaultTemplate(t.Language)
}

// RunTask runs a task's starter code as-is: the first thing the player does
// when a task opens with auto-run enabled.
func (p *Player) RunTask(ctx context.Context, task Task) (platform.ExecutionResult, error) {
	return p.Run(ctx, task.Code(), task.Language, task.StarterPackages...)
}
