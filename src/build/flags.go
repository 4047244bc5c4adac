package build

import (
	"errors"
	"fmt"

	"github.com/sofmeright/netrig/src/backend"
)

// Feature flag errors, all of them configuration errors detected before any
// compiler process is launched.
var (
	// ErrConflictingDrivers indicates both driver variant flags were
	// requested at once.
	ErrConflictingDrivers = errors.New("mlx4 and mlx5 feature flags cannot be enabled together")

	// ErrConflictingBackends indicates both backend flags were requested
	// at once.
	ErrConflictingBackends = errors.New("posix and kernel-bypass feature flags cannot be enabled together")

	// ErrUnknownFlag indicates a feature flag outside the recognized set.
	ErrUnknownFlag = errors.New("unknown feature flag")
)

// driverFlags are the mutually exclusive driver variant flags.
var driverFlags = map[string]bool{
	string(backend.DriverMLX4): true,
	string(backend.DriverMLX5): true,
}

// backendFlags are the mutually exclusive backend flags.
var backendFlags = map[string]bool{
	string(backend.Posix):        true,
	string(backend.KernelBypass): true,
}

// ValidateFlags rejects contradictory feature flag sets. Enabling two driver
// variants (or two backends) simultaneously is unsatisfiable and must fail
// before a compiler is ever invoked.
func ValidateFlags(flags []string) error {
	drivers := 0
	backends := 0
	for _, f := range flags {
		switch {
		case driverFlags[f]:
			drivers++
		case backendFlags[f]:
			backends++
		default:
			return fmt.Errorf("%w: %q", ErrUnknownFlag, f)
		}
	}
	if drivers > 1 {
		return ErrConflictingDrivers
	}
	if backends > 1 {
		return ErrConflictingBackends
	}
	return nil
}

// posixEngine emits flags for the socket backend.
type posixEngine struct{}

func (posixEngine) Name() backend.Name { return backend.Posix }

func (posixEngine) FeatureFlags(spec backend.Spec) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return []string{string(backend.Posix)}, nil
}

// bypassEngine emits the backend flag together with the resolved driver
// variant flag; the two are always enabled as a pair.
type bypassEngine struct{}

func (bypassEngine) Name() backend.Name { return backend.KernelBypass }

func (bypassEngine) FeatureFlags(spec backend.Spec) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return []string{string(backend.KernelBypass), string(spec.Driver)}, nil
}

func init() {
	Register(backend.Posix, func() Engine { return posixEngine{} })
	Register(backend.KernelBypass, func() Engine { return bypassEngine{} })
}
