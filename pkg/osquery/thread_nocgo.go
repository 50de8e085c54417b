//go:build !linux && !windows && !cgo

package osquery

// Without cgo there is no portable way to read pthread_self().
func currentThreadHandle() (int, ThreadIDKind) {
	return NoPID, KindUnavailable
}
