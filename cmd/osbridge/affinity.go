package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egandro/osbridge/pkg/osquery"
)

// PinOutput is the result of the pin command.
type PinOutput struct {
	CPU      int    `json:"cpu"`
	Status   string `json:"status"`
	Code     int32  `json:"code"`
	Affinity []int  `json:"affinity,omitempty"`
}

func newPinCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "pin <cpu>",
		Short: "Restrict the process to a single CPU",
		Long: `Restrict every thread of this process to the given logical CPU.
A negative CPU means no affinity and leaves the scheduler alone.
The index is passed to the OS unchecked; invalid ones are rejected there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cpu, err := parseCPU(args[0])
			if err != nil {
				return err
			}

			if cpu < 0 {
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), PinOutput{CPU: osquery.NoProcessorAffinity, Status: "skipped"})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No processor affinity requested")
				return nil
			}

			res := a.bridge.SetProcessorAffinity(cpu)
			out := PinOutput{CPU: cpu, Status: res.Status.String(), Code: res.Code()}
			if res.OK() {
				// Best effort, the pin itself already succeeded
				out.Affinity, _ = a.bridge.ProcessorAffinity()
			}

			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "cpu=%d status=%s code=%d\n", out.CPU, out.Status, out.Code)
			}
			return res.Err()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newAffinityCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "affinity",
		Short: "Show the CPUs the process may run on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cpus, err := a.bridge.ProcessorAffinity()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), cpus)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatCPUList(cpus))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
