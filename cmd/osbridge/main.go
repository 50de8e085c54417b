package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/egandro/osbridge/pkg/config"
	"github.com/egandro/osbridge/pkg/executor"
	"github.com/egandro/osbridge/pkg/logger"
	"github.com/egandro/osbridge/pkg/osquery"
)

// app carries what the subcommands share. Tests fill bridge and exec with fakes.
type app struct {
	cfg       *config.Config
	bridge    *osquery.Bridge
	exec      executor.Executor
	logCloser io.Closer
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string
	var logLevel string
	var logFile string
	var toStderr bool

	rootCmd := &cobra.Command{
		Use:          "osbridge",
		Short:        "Query OS thread/process ids and pin the process to a CPU",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load(configFile)
			if logLevel != "" {
				a.cfg.LogLevel = logLevel
			}
			if logFile != "" {
				a.cfg.LogFile = logFile
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			closer, err := logger.Setup(a.cfg.LogFile, a.cfg.LogLevel, toStderr)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v, defaulting to INFO\n", err)
			}
			a.logCloser = closer

			if a.bridge == nil {
				a.bridge = osquery.New()
			}
			if a.exec == nil {
				a.exec = &executor.DefaultExecutor{}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				_ = a.logCloser.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.ConstantConfigFilename, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&toStderr, "stderr", false, "Log to stderr")

	rootCmd.AddCommand(newTidCmd(a))
	rootCmd.AddCommand(newPidCmd(a))
	rootCmd.AddCommand(newPinCmd(a))
	rootCmd.AddCommand(newAffinityCmd(a))
	rootCmd.AddCommand(newThreadsCmd(a))
	rootCmd.AddCommand(newInfoCmd(a))
	return rootCmd
}
