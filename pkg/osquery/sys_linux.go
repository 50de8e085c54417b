//go:build linux

package osquery

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// CPUSet is an alias for the Linux-specific CPU affinity mask.
type CPUSet = unix.CPUSet

type linuxOps struct{}

func defaultOps() SystemOps {
	return &linuxOps{}
}

// Gettid wraps the gettid syscall.
func (l *linuxOps) Gettid() (int, ThreadIDKind) {
	return unix.Gettid(), KindKernelTID
}

func (l *linuxOps) Getpid() int {
	return unix.Getpid()
}

// SchedSetaffinity wraps the Linux sched_setaffinity syscall.
func (l *linuxOps) SchedSetaffinity(tid int, mask *CPUSet) error {
	return unix.SchedSetaffinity(tid, mask)
}

func (l *linuxOps) SchedGetaffinity(tid int, mask *CPUSet) error {
	return unix.SchedGetaffinity(tid, mask)
}

// ProcessThreads lists the tids under /proc/<pid>/task.
func (l *linuxOps) ProcessThreads(pid int) ([]int, error) {
	entries, err := os.ReadDir(fmt.Sprintf("/proc/%d/task", pid))
	if err != nil {
		return nil, fmt.Errorf("failed to read process threads for pid %d: %w", pid, err)
	}
	var tids []int
	for _, e := range entries {
		if tid, err := strconv.Atoi(e.Name()); err == nil {
			tids = append(tids, tid)
		}
	}
	return tids, nil
}

func errnoOf(err error) (int32, bool) {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int32(errno), true
	}
	return 0, false
}

func threadExited(err error) bool {
	return errors.Is(err, unix.ESRCH)
}
