package platform

import "fmt"

// Output line markers. Lines produced by console.error/console.warn (or the
// python process's stderr) are tagged so the UI can style them; plain output
// lines carry no marker.
const (
	ErrorLinePrefix = "[error] "
	WarnLinePrefix  = "[warn] "
)

// NoOutputMessage is substituted when a run completes without producing any
// output, so a successful silent run is never confused with one still in
// flight.
const NoOutputMessage = "Code executed successfully (no output)"

// ExecutionResult is the structured outcome of one run. Exactly one of
// OutputLines or Error is the primary signal, but both fields are always
// present: a failed run has Error set and OutputLines empty, a successful
// run has Error empty and at least one output line.
type ExecutionResult struct {
	// OutputLines holds the captured console/stdout output in emission order.
	OutputLines []string

	// Error holds the failure message for runs that threw or raised.
	// Empty on success.
	Error string

	// DetectedPackages lists the external package identifiers detected in
	// the snippet immediately before this run.
	DetectedPackages []string
}

// Failed reports whether the run ended with an execution error.
func (r ExecutionResult) Failed() bool {
	return r.Error != ""
}

func (r ExecutionResult) String() string {
	return fmt.Sprintf(
		"ExecutionResult{Lines: %d, Error: %q, Detected: %v}",
		len(r.OutputLines), r.Error, r.DetectedPackages)
}

// NewSuccessResult builds a successful result, substituting the no-output
// sentinel when no lines were captured.
func NewSuccessResult(lines []string, detected []string) ExecutionResult {
	if len(lines) == 0 {
		lines = []string{NoOutputMessage}
	}
	return ExecutionResult{
		OutputLines:      lines,
		DetectedPackages: detected,
	}
}

// NewErrorResult builds a failed result. Output captured before the failure
// is discarded: the error message replaces it entirely.
func NewErrorResult(message string, detected []string) ExecutionResult {
	return ExecutionResult{
		OutputLines:      []string{},
		Error:            message,
		DetectedPackages: detected,
	}
}
