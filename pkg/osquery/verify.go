package osquery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/egandro/osbridge/pkg/executor"
)

// shellPIDScript prints the pid of the shell's parent, i.e. this process.
const shellPIDScript = "echo $PPID"

// VerifyProcessID asks a child shell for its parent pid and compares it with
// ProcessID. It returns the pid the shell reported.
func (b *Bridge) VerifyProcessID(ctx context.Context, exec executor.Executor, shell string) (int32, error) {
	out, err := exec.Output(ctx, shell, "-c", shellPIDScript)
	if err != nil {
		return NoPID, fmt.Errorf("failed to run %s: %w", shell, err)
	}

	pid, err := parseShellPID(out)
	if err != nil {
		return NoPID, err
	}

	if own := b.ProcessID(); pid != own {
		return pid, fmt.Errorf("shell reported pid %d but process id is %d", pid, own)
	}
	return pid, nil
}

// parseShellPID reads a positive pid from the first line of out.
func parseShellPID(out []byte) (int32, error) {
	line, _, _ := strings.Cut(string(out), "\n")
	line = strings.TrimSpace(line)

	pid, err := strconv.ParseInt(line, 10, 32)
	if err != nil {
		return NoPID, fmt.Errorf("invalid pid output %q: %w", line, err)
	}
	if pid <= 0 {
		return NoPID, fmt.Errorf("invalid pid output %q: not positive", line)
	}
	return int32(pid), nil
}
