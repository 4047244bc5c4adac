package build

import (
	"errors"
	"fmt"
	"time"
)

// Target selects what gets compiled.
type Target string

const (
	TargetLibrary Target = "library"
	TargetTests   Target = "tests"
)

// ErrUnknownTarget indicates an unrecognized build target.
var ErrUnknownTarget = errors.New("unknown build target")

// ParseTarget maps a string to a Target.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetLibrary, TargetTests:
		return Target(s), nil
	default:
		return "", fmt.Errorf("target %q: %w", s, ErrUnknownTarget)
	}
}

// Status is the outcome class of a build.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result captures the outcome of one build invocation. The exit code is the
// build tool's, propagated unchanged; the orchestrator never interprets or
// retries compiler errors.
type Result struct {
	Target   Target
	Status   Status
	ExitCode int
	Duration time.Duration
}
