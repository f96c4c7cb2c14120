package process

import (
	"context"
	"sync"
)

// MockRunner is a Runner test double. It records every command it is asked
// to launch; RunFunc decides the result. A nil RunFunc yields exit code 0
// with empty output.
type MockRunner struct {
	RunFunc func(ctx context.Context, dir string, args []string) (CommandResult, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall is one recorded invocation.
type MockCall struct {
	Dir  string
	Args []string
}

func (m *MockRunner) Run(ctx context.Context, dir string, args ...string) (CommandResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Dir: dir, Args: append([]string(nil), args...)})
	m.mu.Unlock()

	if m.RunFunc == nil {
		return CommandResult{}, nil
	}
	return m.RunFunc(ctx, dir, args)
}

// Calls returns a copy of the recorded invocations.
func (m *MockRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// LaunchCount is the number of commands Run was asked to launch.
func (m *MockRunner) LaunchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
