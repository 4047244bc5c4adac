package testrun

import "time"

// Status is the outcome class of a test invocation. TimedOut is distinct
// from Failure so a hung peer can be told apart from an ordinary crash.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailure  Status = "failure"
	StatusTimedOut Status = "timed-out"
)

// Result captures the outcome of one test invocation. Pass/fail is decided
// solely by exit code and timeout status; captured output is surfaced
// verbatim for diagnostics and never parsed.
type Result struct {
	TestName string
	Role     Role
	Status   Status
	ExitCode int
	Duration time.Duration
	Stdout   []byte
	Stderr   []byte
}

// Passed reports whether the invocation succeeded.
func (r *Result) Passed() bool {
	return r.Status == StatusSuccess
}
