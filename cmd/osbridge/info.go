package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/egandro/osbridge/pkg/topology"
)

// InfoOutput is the result of the info command.
type InfoOutput struct {
	PID      int32               `json:"pid"`
	Thread   ThreadIDOutput      `json:"thread"`
	Affinity []int               `json:"affinity"`
	Summary  topology.Summary    `json:"summary"`
	CPUs     []topology.CoreInfo `json:"cpus,omitempty"`
}

func newInfoCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show process, thread and CPU information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			out := InfoOutput{
				PID:    a.bridge.ProcessID(),
				Thread: newThreadIDOutput(a.bridge.ThreadID()),
			}

			affinity, err := a.bridge.ProcessorAffinity()
			if err != nil {
				slog.Debug("Processor affinity not available", "error", err)
			}
			out.Affinity = affinity

			cores, err := topology.Detect()
			if err != nil {
				slog.Debug("CPU topology not available", "error", err)
				out.Summary = topology.Summary{CPUCount: topology.NumCPU()}
			} else {
				out.CPUs = cores
				out.Summary = topology.Summarize(cores)
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printInfo(cmd, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func printInfo(cmd *cobra.Command, out InfoOutput) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "PID:      %d\n", out.PID)
	fmt.Fprintf(w, "Thread:   %d (%s)\n", out.Thread.TID, out.Thread.Kind)
	fmt.Fprintf(w, "Affinity: %s\n", formatCPUList(out.Affinity))
	fmt.Fprintf(w, "CPUs:     %d (%d sockets)\n", out.Summary.CPUCount, out.Summary.SocketCount)

	if len(out.CPUs) == 0 {
		return
	}

	allowed := make(map[int]bool)
	for _, cpu := range out.Affinity {
		allowed[cpu] = true
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CPU\tSOCKET\tCORE\tALLOWED")
	for _, c := range out.CPUs {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%t\n", c.CPU, c.Socket, c.Core, allowed[c.CPU])
	}
	_ = tw.Flush()
}
