//go:build !linux

package osquery

// CPUSet is a stub type for non-Linux platforms.
// Affinity control itself only works on Linux.
type CPUSet struct {
	bits [maxCPUs / 64]uint64 // matches unix.CPUSet size
}

// Set marks cpu as part of the set.
func (s *CPUSet) Set(cpu int) {
	if cpu >= 0 && cpu < maxCPUs {
		s.bits[cpu/64] |= 1 << (uint(cpu) % 64)
	}
}

// IsSet reports whether cpu is part of the set.
func (s *CPUSet) IsSet(cpu int) bool {
	if cpu >= 0 && cpu < maxCPUs {
		return s.bits[cpu/64]&(1<<(uint(cpu)%64)) != 0
	}
	return false
}

// Count returns the number of CPUs in the set.
func (s *CPUSet) Count() int {
	c := 0
	for _, w := range s.bits {
		for ; w != 0; w &= w - 1 {
			c++
		}
	}
	return c
}

// Zero clears the set.
func (s *CPUSet) Zero() {
	s.bits = [maxCPUs / 64]uint64{}
}

// Affinity requests never reach the OS here, so there is no errno to report.
func errnoOf(err error) (int32, bool) {
	return 0, false
}

func threadExited(err error) bool {
	return false
}
