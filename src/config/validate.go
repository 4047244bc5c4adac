package config

import (
	"errors"
	"fmt"

	"github.com/sofmeright/netrig/src/backend"
)

// Validation errors. A validation failure aborts before any process is
// spawned; contradictory selections are never silently defaulted.
var (
	// ErrInvalidTimeout indicates a non-positive test timeout.
	ErrInvalidTimeout = errors.New("test.timeout must be >= 1 second")

	// ErrInvalidRole indicates an unrecognized peer role.
	ErrInvalidRole = errors.New("test.role must be client or server")

	// ErrInvalidMTU indicates an out-of-range MTU.
	ErrInvalidMTU = errors.New("test.mtu must be between 68 and 9216")

	// ErrInvalidMSS indicates an MSS that cannot fit the configured MTU.
	ErrInvalidMSS = errors.New("test.mss must be positive and fit within test.mtu")

	// ErrEmptyPrefix indicates an empty installation prefix.
	ErrEmptyPrefix = errors.New("deps.prefix must not be empty")

	// ErrEmptyTestName indicates an empty test name.
	ErrEmptyTestName = errors.New("test.name must not be empty")
)

// validRoles lists the recognized peer role strings.
var validRoles = map[string]bool{
	"client": true,
	"server": true,
}

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Backend.Name != "" {
		if _, err := backend.ParseName(cfg.Backend.Name); err != nil {
			return err
		}
	}
	if _, err := backend.ParseDriver(cfg.Backend.Driver); err != nil {
		return err
	}
	if _, err := backend.ParseProfile(cfg.Backend.Profile); err != nil {
		return err
	}
	if cfg.Backend.Name == string(backend.Posix) && cfg.Backend.Driver != "" {
		return backend.ErrDriverForbidden
	}

	if cfg.Deps.Prefix == "" {
		return ErrEmptyPrefix
	}

	if cfg.Test.Name == "" {
		return ErrEmptyTestName
	}
	if cfg.Test.Timeout < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidTimeout, cfg.Test.Timeout)
	}
	if !validRoles[cfg.Test.Role] {
		return fmt.Errorf("%w (got %q)", ErrInvalidRole, cfg.Test.Role)
	}
	if cfg.Test.MTU < 68 || cfg.Test.MTU > 9216 {
		return fmt.Errorf("%w (got %d)", ErrInvalidMTU, cfg.Test.MTU)
	}
	if cfg.Test.MSS < 1 || cfg.Test.MSS > cfg.Test.MTU-40 {
		return fmt.Errorf("%w (mss %d, mtu %d)", ErrInvalidMSS, cfg.Test.MSS, cfg.Test.MTU)
	}

	return nil
}
