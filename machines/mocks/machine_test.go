package mocks

import (
	"testing"

	"github.com/pathlab/coderunner/platform"
)

// TestMachineImplementsMachine verifies at compile time that our mocks
// implement the interfaces they stand in for.
func TestMachineImplementsMachine(t *testing.T) {
	// This is a compile-time check - if it doesn't compile, the test fails
	var _ platform.Machine = (*Machine)(nil)
	var _ platform.Machine = (*BootableMachine)(nil)
	var _ platform.RuntimeBooter = (*BootableMachine)(nil)
}
