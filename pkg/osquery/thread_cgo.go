//go:build !linux && !windows && cgo

package osquery

/*
#include <pthread.h>
#include <stdint.h>

static uintptr_t osbridge_thread_self(void) {
	return (uintptr_t)pthread_self();
}
*/
import "C"

// currentThreadHandle returns pthread_self() truncated to 32 bits. This is a
// per-thread handle, not a kernel tid.
func currentThreadHandle() (int, ThreadIDKind) {
	return int(int32(uint32(C.osbridge_thread_self()))), KindOpaqueHandle
}
