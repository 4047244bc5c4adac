// Package cmd wires the netrig commands: backend resolution, native
// dependency builds, library/test compilation, and peer-coordinated test
// execution.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/sofmeright/netrig/src/config"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

// Exit codes for the harness's own top-level commands. 0 means every
// requested step succeeded; otherwise the first failing step's code wins.
const (
	// exitConfig flags an unsatisfiable request, detected before any
	// process was spawned.
	exitConfig = 2
	// exitTimeout flags a test invocation killed at its deadline.
	exitTimeout = 124
)

var rootCmd = &cobra.Command{
	Use:   "netrig",
	Short: "Build-and-test rig for multi-backend networking stacks",
	Long: "NetRig — selects which I/O backend to compile, builds its native\n" +
		"dependencies in order, compiles the library and test binaries, and\n" +
		"drives two-peer network tests under a timeout.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version needs no configuration.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return &exitError{code: exitConfig, err: fmt.Errorf("loading config: %w", err)}
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger = config.NewLogger(config.LogConfig{Level: level, Format: cfg.Log.Format}, os.Stderr)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .netrig.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

// exitError carries a specific process exit code up to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCodeOf extracts a child process exit code from err, falling back to 1.
func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
