package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newTidCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tid",
		Short: "Show the id of the calling OS thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			tid := a.bridge.ThreadID()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newThreadIDOutput(tid))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d (%s)\n", tid.Int32(), tid.Kind)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

// PIDOutput is the result of the pid command.
type PIDOutput struct {
	PID      int32 `json:"pid"`
	ShellPID int32 `json:"shell_pid,omitempty"`
	Verified bool  `json:"verified"`
}

func newPidCmd(a *app) *cobra.Command {
	var jsonOutput bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "pid",
		Short: "Show the process id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("verify") {
				verify = a.cfg.VerifyPID
			}

			out := PIDOutput{PID: a.bridge.ProcessID()}
			if verify {
				shellPID, err := a.bridge.VerifyProcessID(cmd.Context(), a.exec, a.cfg.Shell)
				if err != nil {
					return fmt.Errorf("pid verification failed: %w", err)
				}
				out.ShellPID = shellPID
				out.Verified = true
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if out.Verified {
				fmt.Fprintf(cmd.OutOrStdout(), "%d (verified via %s)\n", out.PID, a.cfg.Shell)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", out.PID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&verify, "verify", false, "Cross-check the pid with a child shell")
	return cmd
}
