//go:build !linux && !windows

package osquery

import "os"

// otherOps serves platforms without a gettid equivalent. Thread identity
// falls back to currentThreadHandle (thread_cgo.go / thread_nocgo.go).
type otherOps struct{}

func defaultOps() SystemOps {
	return &otherOps{}
}

func (o *otherOps) Gettid() (int, ThreadIDKind) {
	return currentThreadHandle()
}

func (o *otherOps) Getpid() int {
	return os.Getpid()
}

func (o *otherOps) SchedSetaffinity(tid int, mask *CPUSet) error {
	return ErrUnsupported
}

func (o *otherOps) SchedGetaffinity(tid int, mask *CPUSet) error {
	return ErrUnsupported
}

func (o *otherOps) ProcessThreads(pid int) ([]int, error) {
	return nil, ErrUnsupported
}
