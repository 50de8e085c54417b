// Package osquery exposes the calling thread's OS identifier, the process
// identifier and process-wide CPU pinning.
//
// Every call goes straight to the operating system. Nothing is cached.
package osquery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// CPUSet and the default SystemOps are defined in sys_linux.go for Linux,
// sys_windows.go for Windows and sys_other.go for the remaining platforms.

const (
	// NoPID is returned wherever an identifier cannot be obtained.
	NoPID = -1

	// NoProcessorAffinity means "do not pin".
	NoProcessorAffinity = -1

	// maxCPUs matches the capacity of unix.CPUSet.
	maxCPUs = 1024
)

var (
	// ErrUnsupported is returned by SystemOps on platforms without CPU affinity control.
	ErrUnsupported = errors.New("processor affinity is not supported on this platform")

	// ErrRejected wraps the errno of a rejected affinity request.
	ErrRejected = errors.New("processor affinity rejected by the operating system")
)

// OSIdentity is the capability surface of the bridge.
type OSIdentity interface {
	ThreadID() ThreadID
	ProcessID() int32
	SetProcessorAffinity(cpu int) AffinityResult
	ProcessorAffinity() ([]int, error)
}

// SystemOps defines the operating system primitives the bridge forwards to.
// A tid of 0 addresses the calling thread.
type SystemOps interface {
	Gettid() (int, ThreadIDKind)
	Getpid() int
	SchedSetaffinity(tid int, mask *CPUSet) error
	SchedGetaffinity(tid int, mask *CPUSet) error
	ProcessThreads(pid int) ([]int, error)
}

// Bridge implements OSIdentity on top of a SystemOps.
type Bridge struct {
	sys SystemOps
}

var _ OSIdentity = (*Bridge)(nil)

// New returns a Bridge backed by the platform's system calls.
func New() *Bridge {
	return &Bridge{sys: defaultOps()}
}

// NewWithOps returns a Bridge backed by sys.
func NewWithOps(sys SystemOps) *Bridge {
	return &Bridge{sys: sys}
}

// ThreadID returns the identifier of the OS thread currently running the
// caller. Goroutines migrate between threads unless locked with
// runtime.LockOSThread, so the value is only stable for locked goroutines.
func (b *Bridge) ThreadID() ThreadID {
	tid, kind := b.sys.Gettid()
	if kind == KindUnavailable || (kind == KindKernelTID && tid < 0) {
		return ThreadID{Kind: KindUnavailable, Value: NoPID}
	}
	return ThreadID{Kind: kind, Value: int32(tid)}
}

// ProcessID returns the OS process identifier.
func (b *Bridge) ProcessID() int32 {
	return int32(b.sys.Getpid())
}

// SetProcessorAffinity restricts every thread of the process to cpu.
// The index is not validated; the operating system rejects invalid ones.
func (b *Bridge) SetProcessorAffinity(cpu int) AffinityResult {
	var mask CPUSet
	// unix.CPUSet.Set maps negative indices onto high bits of the first word.
	// Leave the mask empty instead so the kernel rejects it.
	if cpu >= 0 {
		mask.Set(cpu)
	}

	res := b.applyMask(&mask)
	if res.OK() {
		slog.Debug("Applied processor affinity", "pid", b.ProcessID(), "cpu", cpu)
	} else {
		slog.Debug("Processor affinity not applied", "cpu", cpu, "status", res.Status, "code", res.Code())
	}
	return res
}

// applyMask sets mask on the calling thread first and, once the OS has
// accepted it there, on every other thread of the process.
func (b *Bridge) applyMask(mask *CPUSet) AffinityResult {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := b.sys.SchedSetaffinity(0, mask); err != nil {
		return resultFromError(err)
	}

	self, _ := b.sys.Gettid()
	pid := b.sys.Getpid()

	tids, err := b.sys.ProcessThreads(pid)
	if err != nil {
		slog.Warn("Failed to list process threads, only the calling thread is pinned", "pid", pid, "error", err)
		return AffinityResult{Status: StatusOK}
	}

	for _, tid := range tids {
		if tid == self {
			continue
		}
		if err := b.sys.SchedSetaffinity(tid, mask); err != nil {
			if threadExited(err) {
				continue
			}
			// Keep going, the remaining threads may still accept the mask
			slog.Warn("Failed to set thread affinity", "pid", pid, "tid", tid, "error", err)
		}
	}
	return AffinityResult{Status: StatusOK}
}

// ProcessorAffinity returns the CPUs the calling thread may run on, in
// ascending order.
func (b *Bridge) ProcessorAffinity() ([]int, error) {
	var mask CPUSet
	if err := b.sys.SchedGetaffinity(0, &mask); err != nil {
		return nil, fmt.Errorf("failed to query processor affinity: %w", err)
	}
	return maskCPUs(&mask), nil
}

func maskCPUs(mask *CPUSet) []int {
	cpus := make([]int, 0, mask.Count())
	for cpu := 0; cpu < maxCPUs && len(cpus) < cap(cpus); cpu++ {
		if mask.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus
}

func resultFromError(err error) AffinityResult {
	if errors.Is(err, ErrUnsupported) {
		return AffinityResult{Status: StatusUnsupported}
	}
	code, ok := errnoOf(err)
	if !ok || code == 0 {
		code = -1
	}
	return AffinityResult{Status: StatusRejected, Errno: code}
}

var defaultBridge = New()

// GetThreadID returns the calling thread's identifier.
func GetThreadID() ThreadID {
	return defaultBridge.ThreadID()
}

// GetProcessID returns the process identifier.
func GetProcessID() int32 {
	return defaultBridge.ProcessID()
}

// SetProcessorAffinity pins the whole process to cpu.
func SetProcessorAffinity(cpu int) AffinityResult {
	return defaultBridge.SetProcessorAffinity(cpu)
}

// ProcessorAffinity returns the CPUs the process may currently run on.
func ProcessorAffinity() ([]int, error) {
	return defaultBridge.ProcessorAffinity()
}
