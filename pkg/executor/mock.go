package executor

import "context"

// MockExecutor is a mock implementation of Executor for testing.
// Calls records every invocation as name followed by its args.
type MockExecutor struct {
	RunFunc    func(ctx context.Context, name string, args ...string) error
	OutputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)
	Calls      [][]string
}

func (m *MockExecutor) Run(ctx context.Context, name string, args ...string) error {
	m.record(name, args)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args...)
	}
	return nil
}

func (m *MockExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.record(name, args)
	if m.OutputFunc != nil {
		return m.OutputFunc(ctx, name, args...)
	}
	return []byte{}, nil
}

func (m *MockExecutor) record(name string, args []string) {
	m.Calls = append(m.Calls, append([]string{name}, args...))
}
