package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/egandro/osbridge/pkg/osquery"
)

// ThreadIDOutput is the JSON form of an osquery.ThreadID.
type ThreadIDOutput struct {
	TID  int32  `json:"tid"`
	Kind string `json:"kind"`
}

func newThreadIDOutput(tid osquery.ThreadID) ThreadIDOutput {
	return ThreadIDOutput{TID: tid.Int32(), Kind: tid.Kind.String()}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseCPU accepts any integer; negative values mean "no affinity".
func parseCPU(s string) (int, error) {
	cpu, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid CPU index: %s", s)
	}
	return cpu, nil
}

// formatCPUList renders sorted CPUs in the kernel's list format, e.g. "0-3,8,10-11".
func formatCPUList(cpus []int) string {
	if len(cpus) == 0 {
		return "none"
	}
	var parts []string
	start, prev := cpus[0], cpus[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, cpu := range cpus[1:] {
		if cpu == prev+1 {
			prev = cpu
			continue
		}
		flush()
		start, prev = cpu, cpu
	}
	flush()
	return strings.Join(parts, ",")
}
