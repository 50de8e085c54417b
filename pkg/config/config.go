package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// DefaultLogFile is empty, which logs to stderr. Services embedding the
	// bridge usually point OSB_LOG_FILE at /var/log/osbridge.log.
	DefaultLogFile = ""

	ConstantConfigFilename = "/etc/default/osbridge"

	// DefaultProcessorAffinity of -1 leaves the scheduler alone.
	DefaultProcessorAffinity = -1

	// DefaultShell runs the pid cross-check. Any POSIX shell that sets $PPID works.
	DefaultShell = "/bin/sh"

	// DefaultProbeThreads is the number of locked threads the thread probe starts.
	DefaultProbeThreads = 4

	// DefaultVerifyPID makes the pid command cross-check with a shell by default.
	DefaultVerifyPID = false

	// logger
	DefaultLogLevel = "info"
)

type Config struct {
	LogLevel          string
	LogFile           string
	ProcessorAffinity int
	Shell             string
	ProbeThreads      int
	VerifyPID         bool
}

func (c *Config) Validate() error {
	if c.Shell == "" {
		return errors.New("shell must not be empty (OSB_SHELL)")
	}
	if c.ProbeThreads < 1 {
		return fmt.Errorf("probe threads must be at least 1, got %d (OSB_PROBE_THREADS)", c.ProbeThreads)
	}
	return nil
}

// Load reads filename into the environment (a missing file is ignored) and
// builds the Config from OSB_* variables.
func Load(filename string) *Config {
	if filename == "" {
		filename = ConstantConfigFilename
	}
	_ = godotenv.Load(filename)

	return &Config{
		LogLevel:          getEnv("OSB_LOG_LEVEL", DefaultLogLevel),
		LogFile:           getEnv("OSB_LOG_FILE", DefaultLogFile),
		ProcessorAffinity: getEnvInt("OSB_PROCESSOR_AFFINITY", DefaultProcessorAffinity),
		Shell:             getEnv("OSB_SHELL", DefaultShell),
		ProbeThreads:      getEnvInt("OSB_PROBE_THREADS", DefaultProbeThreads),
		VerifyPID:         getEnvBool("OSB_VERIFY_PID", DefaultVerifyPID),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
