package executor

import (
	"context"
	"os/exec"
)

// Executor defines the interface for running external commands.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor runs commands as direct children of this process.
type DefaultExecutor struct {
	// Env replaces the child environment when non-nil.
	Env []string
}

func (e *DefaultExecutor) Run(ctx context.Context, name string, args ...string) error {
	return e.command(ctx, name, args...).Run()
}

func (e *DefaultExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return e.command(ctx, name, args...).Output()
}

func (e *DefaultExecutor) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if e.Env != nil {
		cmd.Env = e.Env
	}
	return cmd
}
