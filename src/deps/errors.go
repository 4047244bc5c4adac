package deps

import "fmt"

// BuildError reports a native prerequisite that failed to build. The failing
// stage is carried so callers can tell a packet-library failure from a
// bypass-stack failure; a stage failure aborts the remaining sequence and is
// never retried by the builder.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
