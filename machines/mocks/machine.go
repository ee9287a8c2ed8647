package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pathlab/coderunner/platform"
)

// Machine is a mock implementation of platform.Machine for testing purposes.
type Machine struct {
	mock.Mock
}

// Language is a mock implementation of the Language method.
func (m *Machine) Language() platform.Language {
	args := m.Called()
	return args.Get(0).(platform.Language)
}

// LoadPackages is a mock implementation of the LoadPackages method.
func (m *Machine) LoadPackages(ctx context.Context, names []string) ([]string, error) {
	args := m.Called(ctx, names)
	var unsupported []string
	if v := args.Get(0); v != nil {
		unsupported = v.([]string)
	}
	return unsupported, args.Error(1)
}

// Execute is a mock implementation of the Execute method.
func (m *Machine) Execute(ctx context.Context, code string) platform.ExecutionResult {
	args := m.Called(ctx, code)
	return args.Get(0).(platform.ExecutionResult)
}

// BootableMachine is a mock implementation of a machine that also satisfies
// platform.RuntimeBooter.
type BootableMachine struct {
	Machine
}

// Booted is a mock implementation of the Booted method.
func (m *BootableMachine) Booted() bool {
	args := m.Called()
	return args.Bool(0)
}

// EnsureRuntime is a mock implementation of the EnsureRuntime method.
func (m *BootableMachine) EnsureRuntime(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
