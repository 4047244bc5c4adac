// Package backend resolves which I/O backend of the networking library to
// compile and which native driver variant to enable for it.
package backend

import (
	"errors"
	"fmt"
)

// Name identifies a compilation target backend.
type Name string

const (
	// Posix is the socket-based backend using the host network stack.
	Posix Name = "posix"
	// KernelBypass is the user-space backend layered on the packet-processing
	// library and the bypass TCP stack.
	KernelBypass Name = "kernel-bypass"
)

// Driver is a hardware-specific code path within the kernel-bypass backend.
type Driver string

const (
	DriverNone Driver = ""
	DriverMLX5 Driver = "mlx5"
	DriverMLX4 Driver = "mlx4"
)

// Profile selects the compilation profile.
type Profile string

const (
	ProfileDebug   Profile = "debug"
	ProfileRelease Profile = "release"
)

// Resolution errors.
var (
	// ErrUnknownBackend indicates an explicit backend choice names an
	// unsupported backend.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrUnknownDriver indicates an explicit driver choice names an
	// unsupported driver variant.
	ErrUnknownDriver = errors.New("unknown driver variant")

	// ErrDriverForbidden indicates a driver variant was set for a backend
	// that takes none.
	ErrDriverForbidden = errors.New("driver variant is only valid for the kernel-bypass backend")

	// ErrDriverMissing indicates the kernel-bypass backend was resolved
	// without a driver variant.
	ErrDriverMissing = errors.New("kernel-bypass backend requires a driver variant")

	// ErrUnknownProfile indicates an unrecognized build profile.
	ErrUnknownProfile = errors.New("unknown build profile")
)

// Spec identifies a single compilation target. It is an immutable value
// constructed once per invocation; Driver is set iff Name is KernelBypass.
type Spec struct {
	Name    Name
	Driver  Driver
	Profile Profile
}

// Validate checks the Spec invariants.
func (s Spec) Validate() error {
	switch s.Name {
	case Posix:
		if s.Driver != DriverNone {
			return fmt.Errorf("backend %s: %w", s.Name, ErrDriverForbidden)
		}
	case KernelBypass:
		switch s.Driver {
		case DriverMLX4, DriverMLX5:
		case DriverNone:
			return ErrDriverMissing
		default:
			return fmt.Errorf("driver %q: %w", s.Driver, ErrUnknownDriver)
		}
	default:
		return fmt.Errorf("backend %q: %w", s.Name, ErrUnknownBackend)
	}

	switch s.Profile {
	case ProfileDebug, ProfileRelease:
	default:
		return fmt.Errorf("profile %q: %w", s.Profile, ErrUnknownProfile)
	}

	return nil
}

// String renders the spec as backend[/driver]/profile.
func (s Spec) String() string {
	if s.Driver == DriverNone {
		return fmt.Sprintf("%s/%s", s.Name, s.Profile)
	}
	return fmt.Sprintf("%s/%s/%s", s.Name, s.Driver, s.Profile)
}

// ParseName maps a configuration string to a backend Name.
func ParseName(s string) (Name, error) {
	switch Name(s) {
	case Posix, KernelBypass:
		return Name(s), nil
	default:
		return "", fmt.Errorf("backend %q: %w", s, ErrUnknownBackend)
	}
}

// ParseDriver maps a configuration string to a Driver. The empty string is
// valid and means "resolve from hardware".
func ParseDriver(s string) (Driver, error) {
	switch Driver(s) {
	case DriverNone, DriverMLX4, DriverMLX5:
		return Driver(s), nil
	default:
		return "", fmt.Errorf("driver %q: %w", s, ErrUnknownDriver)
	}
}

// ParseProfile maps a configuration string to a Profile.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileDebug, ProfileRelease:
		return Profile(s), nil
	default:
		return "", fmt.Errorf("profile %q: %w", s, ErrUnknownProfile)
	}
}
