package osquery

import "fmt"

// ThreadIDKind tells what a ThreadID value actually is.
type ThreadIDKind int

const (
	// KindUnavailable means no identifier could be obtained.
	KindUnavailable ThreadIDKind = iota
	// KindKernelTID is a kernel thread id, comparable with what the OS reports
	// (e.g. /proc/<pid>/task, ps -L).
	KindKernelTID
	// KindOpaqueHandle is a thread handle (pthread_self) truncated to 32 bits.
	// It only tells threads of this process apart and means nothing to the kernel.
	KindOpaqueHandle
)

func (k ThreadIDKind) String() string {
	switch k {
	case KindKernelTID:
		return "tid"
	case KindOpaqueHandle:
		return "opaque-handle"
	}
	return "unavailable"
}

// ThreadID identifies an OS thread at the time it was read.
type ThreadID struct {
	Kind  ThreadIDKind
	Value int32
}

// Int32 returns the raw value, or NoPID when no identifier is available.
func (t ThreadID) Int32() int32 {
	if t.Kind == KindUnavailable {
		return NoPID
	}
	return t.Value
}

// IsKernel reports whether the value is a kernel thread id.
func (t ThreadID) IsKernel() bool {
	return t.Kind == KindKernelTID
}

func (t ThreadID) String() string {
	if t.Kind == KindUnavailable {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s:%d", t.Kind, t.Value)
}

// AffinityStatus is the outcome of an affinity request.
type AffinityStatus int

const (
	StatusOK AffinityStatus = iota
	StatusUnsupported
	StatusRejected
)

func (s AffinityStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnsupported:
		return "unsupported"
	case StatusRejected:
		return "rejected"
	}
	return "unknown"
}

// AffinityResult is returned by SetProcessorAffinity. Errno is only set for
// StatusRejected.
type AffinityResult struct {
	Status AffinityStatus
	Errno  int32
}

// OK reports whether the operating system accepted the request.
func (r AffinityResult) OK() bool {
	return r.Status == StatusOK
}

// Code returns the integer status code: 0 on success, -1 when unsupported,
// otherwise the nonzero errno the OS rejected the request with.
func (r AffinityResult) Code() int32 {
	switch r.Status {
	case StatusOK:
		return 0
	case StatusRejected:
		if r.Errno != 0 {
			return r.Errno
		}
	}
	return -1
}

// Err converts the result into an error, nil on success.
func (r AffinityResult) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusUnsupported:
		return ErrUnsupported
	}
	return fmt.Errorf("%w: errno %d", ErrRejected, r.Code())
}
