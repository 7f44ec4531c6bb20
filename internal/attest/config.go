package attest

import (
	"io"
	"os"
	"time"
)

// Config holds configuration options for the conformance harness.
type Config struct {
	// Command is the executable that starts the score server under test.
	Command string
	// Args are passed to Command before the harness's own flags.
	Args []string

	// Attach, when set to host:port, points Start at an already running
	// server instead of spawning Command. Attached servers cannot be restarted.
	Attach string

	// WorkingDir is the base directory for runs. Each run gets its own
	// subdirectory, passed to the server as --working-dir.
	WorkingDir string

	// Output receives the pass/fail report.
	Output io.Writer

	// ProcessStartTimeout for process startup.
	ProcessStartTimeout time.Duration
	// ProcessShutdownTimeout for process shutdown.
	ProcessShutdownTimeout time.Duration
	// ProcessRestartDelay between stop and start during restart.
	ProcessRestartDelay time.Duration

	// DefaultRetryTimeout for Eventually and Consistently operations.
	DefaultRetryTimeout time.Duration
	// RetryPollInterval for Eventually and Consistently operations.
	RetryPollInterval time.Duration

	// ExecuteTimeout for HTTP client requests.
	ExecuteTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Command:                "./run.sh",
		WorkingDir:             ".hiscore",
		Output:                 os.Stdout,
		ProcessStartTimeout:    10 * time.Second,
		ProcessShutdownTimeout: 10 * time.Second,
		ProcessRestartDelay:    500 * time.Millisecond,
		DefaultRetryTimeout:    5 * time.Second,
		RetryPollInterval:      100 * time.Millisecond,
		ExecuteTimeout:         5 * time.Second,
	}
}

// merge fills unset fields of c from the defaults.
func (c *Config) merge() *Config {
	merged := DefaultConfig()

	if c.Command != "" {
		merged.Command = c.Command
	}

	if c.Args != nil {
		merged.Args = c.Args
	}

	if c.Attach != "" {
		merged.Attach = c.Attach
	}

	if c.WorkingDir != "" {
		merged.WorkingDir = c.WorkingDir
	}

	if c.Output != nil {
		merged.Output = c.Output
	}

	if c.ProcessStartTimeout != 0 {
		merged.ProcessStartTimeout = c.ProcessStartTimeout
	}

	if c.ProcessShutdownTimeout != 0 {
		merged.ProcessShutdownTimeout = c.ProcessShutdownTimeout
	}

	if c.ProcessRestartDelay != 0 {
		merged.ProcessRestartDelay = c.ProcessRestartDelay
	}

	if c.DefaultRetryTimeout != 0 {
		merged.DefaultRetryTimeout = c.DefaultRetryTimeout
	}

	if c.RetryPollInterval != 0 {
		merged.RetryPollInterval = c.RetryPollInterval
	}

	if c.ExecuteTimeout != 0 {
		merged.ExecuteTimeout = c.ExecuteTimeout
	}

	return merged
}
