package testrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Runner launches built test binaries. It provides no rendezvous between
// peer roles: coordinating a client/server pair is the caller's job (see
// RunPair), and the server side must be started first to avoid
// connection-refused races.
type Runner struct {
	// BinDir is the root of the built test binaries, laid out as
	// BinDir/<backend>/<test-name>.
	BinDir string

	Log *slog.Logger
}

// Run executes one invocation and blocks until the process exits or the
// timeout expires. On timeout the whole process group rooted at the test
// binary is killed and the result is StatusTimedOut — never Success, never
// plain Failure. A non-nil error means the harness could not run the
// binary at all; test outcomes are carried in the Result.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	bin := filepath.Join(r.BinDir, string(inv.Backend.Name), inv.TestName)

	cmd := exec.Command(bin)
	cmd.Env = inv.environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group, so a timeout can take down forked helpers too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	r.log().Info("running test", "test", inv.TestName, "role", inv.Role,
		"backend", inv.Backend.String(), "timeout", inv.Timeout)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", bin, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(inv.Timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false

	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		killGroup(cmd)
		<-done
	case <-ctx.Done():
		killGroup(cmd)
		<-done
		return nil, ctx.Err()
	}

	result := &Result{
		TestName: inv.TestName,
		Role:     inv.Role,
		Duration: time.Since(start),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}

	switch {
	case timedOut:
		result.Status = StatusTimedOut
		result.ExitCode = -1
	case waitErr == nil:
		result.Status = StatusSuccess
	default:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("waiting for %s: %w", bin, waitErr)
		}
		result.Status = StatusFailure
		result.ExitCode = exitErr.ExitCode()
	}

	r.log().Info("test finished", "test", inv.TestName, "role", inv.Role,
		"status", result.Status, "exit", result.ExitCode, "duration", result.Duration)

	return result, nil
}

// killGroup forcibly terminates the child's process group. The negative pid
// addresses every process in the group, not just the direct child.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}

func (r *Runner) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
