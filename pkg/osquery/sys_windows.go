//go:build windows

package osquery

import "golang.org/x/sys/windows"

type windowsOps struct{}

func defaultOps() SystemOps {
	return &windowsOps{}
}

// Gettid returns GetCurrentThreadId, which is a kernel thread id on Windows.
func (w *windowsOps) Gettid() (int, ThreadIDKind) {
	return int(windows.GetCurrentThreadId()), KindKernelTID
}

func (w *windowsOps) Getpid() int {
	return int(windows.GetCurrentProcessId())
}

func (w *windowsOps) SchedSetaffinity(tid int, mask *CPUSet) error {
	return ErrUnsupported
}

func (w *windowsOps) SchedGetaffinity(tid int, mask *CPUSet) error {
	return ErrUnsupported
}

func (w *windowsOps) ProcessThreads(pid int) ([]int, error) {
	return nil, ErrUnsupported
}
