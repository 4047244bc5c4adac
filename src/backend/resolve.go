package backend

import (
	"fmt"
	"strings"
)

// mlx5Families are NIC family substrings that select the mlx5 driver path.
// Anything else falls back to mlx4.
var mlx5Families = []string{
	"ConnectX-4",
	"ConnectX-5",
	"ConnectX-6",
	"BlueField",
	"MT27700",
	"MT27800",
	"MT28800",
}

// Resolve produces the compilation target from configuration.
//
// An explicit backend choice wins outright and suppresses hardware probing
// for the backend name. When no explicit choice is given the kernel-bypass
// backend is assumed and the driver variant is derived from the probed NIC
// capability strings. An explicit driver, when set, overrides the probe.
//
// Resolve is pure over its inputs; the probe is a read-only query.
func Resolve(explicit string, driver Driver, profile Profile, probe Probe) (Spec, error) {
	name := KernelBypass
	if explicit != "" {
		parsed, err := ParseName(explicit)
		if err != nil {
			return Spec{}, err
		}
		name = parsed
	}

	spec := Spec{Name: name, Profile: profile}

	if name == Posix {
		if driver != DriverNone {
			return Spec{}, fmt.Errorf("backend %s: %w", name, ErrDriverForbidden)
		}
		return spec, spec.Validate()
	}

	// Kernel-bypass: explicit driver wins, otherwise probe the hardware.
	if driver != DriverNone {
		spec.Driver = driver
		return spec, spec.Validate()
	}

	caps, err := probe.Capabilities()
	if err != nil {
		return Spec{}, fmt.Errorf("probing network hardware: %w", err)
	}
	spec.Driver = driverFor(caps)

	return spec, spec.Validate()
}

// driverFor selects the driver variant matching the probed capability
// strings. A recognized high-performance NIC family selects mlx5; everything
// else defaults to mlx4.
func driverFor(caps []string) Driver {
	for _, cap := range caps {
		for _, family := range mlx5Families {
			if strings.Contains(cap, family) {
				return DriverMLX5
			}
		}
	}
	return DriverMLX4
}
