package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/egandro/osbridge/pkg/worker"
)

// ThreadsOutput is the result of the threads command.
type ThreadsOutput struct {
	Threads  []ThreadOutput `json:"threads"`
	Distinct bool           `json:"distinct"`
}

type ThreadOutput struct {
	Name   string         `json:"name"`
	ID     ThreadIDOutput `json:"id"`
	Pinned bool           `json:"pinned"`
}

func newThreadsCmd(a *app) *cobra.Command {
	var count int
	var cpu int
	var jsonOutput bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Start workers on separate OS threads and compare their thread ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("count") {
				count = a.cfg.ProbeThreads
			}
			if !cmd.Flags().Changed("cpu") {
				cpu = a.cfg.ProcessorAffinity
			}
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}

			var s *spinner.Spinner
			if !quiet && !jsonOutput {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				s.Suffix = fmt.Sprintf(" Probing %d threads...", count)
				s.Start()
			}

			infos, err := probeThreads(cmd.Context(), a, count, cpu)

			if s != nil {
				s.Stop()
			}
			if err != nil {
				return err
			}

			out := summarizeThreads(infos)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, t := range out.Threads {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %8d %-14s pinned=%t\n", t.Name, t.ID.TID, t.ID.Kind, t.Pinned)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "distinct=%t\n", out.Distinct)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of threads (default OSB_PROBE_THREADS)")
	cmd.Flags().IntVar(&cpu, "cpu", -1, "Pin the process to this CPU from each worker (default OSB_PROCESSOR_AFFINITY)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Disable progress spinner")
	return cmd
}

// probeThreads starts count workers and holds all of them on their threads
// until every one has reported, so no thread can be reused in between.
func probeThreads(ctx context.Context, a *app, count, cpu int) ([]worker.Info, error) {
	infos := make([]worker.Info, count)
	handles := make([]*worker.Handle, count)

	var ready sync.WaitGroup
	ready.Add(count)
	release := make(chan struct{})

	for i := 0; i < count; i++ {
		i := i
		opts := worker.Options{Name: fmt.Sprintf("probe-%d", i), CPU: cpu, Bridge: a.bridge}
		handles[i] = worker.Start(ctx, opts, func(ctx context.Context, info worker.Info) error {
			infos[i] = info
			ready.Done()
			<-release
			return nil
		})
	}

	ready.Wait()
	close(release)

	for _, h := range handles {
		if err := h.Wait(); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func summarizeThreads(infos []worker.Info) ThreadsOutput {
	out := ThreadsOutput{Distinct: true}
	seen := make(map[int32]bool)
	for _, info := range infos {
		id := newThreadIDOutput(info.TID)
		out.Threads = append(out.Threads, ThreadOutput{Name: info.Name, ID: id, Pinned: info.Pinned})
		if seen[id.TID] {
			out.Distinct = false
		}
		seen[id.TID] = true
	}
	return out
}
