// Package testrun executes built two-peer network tests under a wall-clock
// timeout, one peer role per invocation.
package testrun

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sofmeright/netrig/src/backend"
)

// Role designates a test process as connection initiator or acceptor.
type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
)

// ErrUnknownRole indicates an unrecognized peer role.
var ErrUnknownRole = errors.New("unknown peer role")

// ErrInvalidTimeout indicates a non-positive timeout.
var ErrInvalidTimeout = errors.New("timeout must be positive")

// ErrEmptyTestName indicates an empty test name.
var ErrEmptyTestName = errors.New("test name must not be empty")

// ParseRole maps a string to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleServer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("role %q: %w", s, ErrUnknownRole)
	}
}

// Invocation describes one test run. It is constructed from resolved
// configuration immediately before execution and discarded afterwards.
type Invocation struct {
	// TestName selects the built test binary.
	TestName string

	// Backend is the compilation target the binary was built for.
	Backend backend.Spec

	// Role tells the binary whether to initiate or accept the connection.
	Role Role

	// Timeout is the hard wall-clock bound for the whole process.
	Timeout time.Duration

	// Env is the complete environment for the child process. It must carry
	// any backend-specific runtime paths (e.g. LD_LIBRARY_PATH for the
	// native stacks); the runner adds only the PEER role discriminator.
	Env map[string]string
}

// Validate checks the invocation before any process is spawned.
func (inv Invocation) Validate() error {
	if inv.TestName == "" {
		return ErrEmptyTestName
	}
	if _, err := ParseRole(string(inv.Role)); err != nil {
		return err
	}
	if inv.Timeout <= 0 {
		return fmt.Errorf("%w (got %s)", ErrInvalidTimeout, inv.Timeout)
	}
	return inv.Backend.Validate()
}

// environ renders Env plus the PEER discriminator as a sorted KEY=value
// list. Sorting keeps child environments deterministic.
func (inv Invocation) environ() []string {
	envs := make([]string, 0, len(inv.Env)+1)
	for k, v := range inv.Env {
		envs = append(envs, k+"="+v)
	}
	envs = append(envs, "PEER="+string(inv.Role))
	sort.Strings(envs)
	return envs
}
