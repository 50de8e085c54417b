// Package topology lists the logical CPUs of the host for diagnostics.
package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is where Linux exposes CPU topology.
const DefaultSysfsRoot = "/sys/devices/system/cpu"

// CoreInfo represents one logical CPU using standard Linux terminology
// - CPU: The logical processor ID (the index SetProcessorAffinity takes).
// - Socket: The physical package ID.
// - Core: The physical core ID within the socket, -1 if unknown.
type CoreInfo struct {
	CPU    int `json:"cpu"`
	Socket int `json:"socket"`
	Core   int `json:"core"`
}

// Summary counts CPUs and sockets.
type Summary struct {
	CPUCount    int `json:"cpu_count"`
	SocketCount int `json:"socket_count"`
}

// Detect reads the CPU topology from DefaultSysfsRoot.
func Detect() ([]CoreInfo, error) {
	return DetectAt(DefaultSysfsRoot)
}

// DetectAt reads the CPU topology below root. Offline or inaccessible CPUs
// are skipped. The result is sorted by CPU.
func DetectAt(root string) ([]CoreInfo, error) {
	var cores []CoreInfo

	matches, err := filepath.Glob(filepath.Join(root, "cpu[0-9]*"))
	if err != nil {
		return nil, err
	}

	for _, path := range matches {
		// e.g. /sys/devices/system/cpu/cpu0 -> 0
		i, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "cpu"))
		if err != nil {
			continue
		}

		socketID, err := readSysFSInt(filepath.Join(path, "topology", "physical_package_id"))
		if err != nil {
			// Skip offline/inaccessible CPUs
			continue
		}

		coreID, err := readSysFSInt(filepath.Join(path, "topology", "core_id"))
		if err != nil {
			coreID = -1
		}

		cores = append(cores, CoreInfo{
			CPU:    i,
			Socket: socketID,
			Core:   coreID,
		})
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no CPUs found below %s", root)
	}

	// Ensure deterministic order
	sort.Slice(cores, func(i, j int) bool {
		return cores[i].CPU < cores[j].CPU
	})

	return cores, nil
}

// Summarize counts the CPUs and distinct sockets in cores.
func Summarize(cores []CoreInfo) Summary {
	sockets := make(map[int]struct{})
	for _, c := range cores {
		sockets[c.Socket] = struct{}{}
	}
	return Summary{CPUCount: len(cores), SocketCount: len(sockets)}
}

// NumCPU returns the number of CPUs found in sysfs.
// Unlike runtime.NumCPU() it also counts CPUs outside the process affinity mask.
func NumCPU() int {
	matches, err := filepath.Glob(filepath.Join(DefaultSysfsRoot, "cpu[0-9]*"))
	if err != nil || len(matches) == 0 {
		return runtime.NumCPU()
	}
	return len(matches)
}

func readSysFSInt(path string) (int, error) {
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		realPath = path
	}
	// #nosec G304 -- path is below the sysfs cpu root
	data, err := os.ReadFile(realPath)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
