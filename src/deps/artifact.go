// Package deps builds the native stacks the kernel-bypass backend links
// against, in strict dependency order, with content-addressed skip stamps
// so a dependency is built at most once per configuration.
package deps

import "errors"

// Build stage identifiers, in dependency order.
const (
	// StagePacketLib is the packet-processing library (built first).
	StagePacketLib = "packet-library"
	// StageBypass is the user-space TCP stack (built against the packet
	// library's install location).
	StageBypass = "bypass-stack"
)

// Artifact describes one installed native dependency. It is an immutable
// value returned by the builder; consumers read paths from it and never
// mutate the install tree themselves.
type Artifact struct {
	// ID is the stage identifier, unique within a build sequence.
	ID string

	// Version is the pinned upstream version that was built.
	Version string

	// InstallPath is the root of this artifact's install tree.
	InstallPath string

	// LibraryPaths are the native library search paths this artifact
	// contributes, in link order.
	LibraryPaths []string

	// DependsOn lists the IDs of artifacts this one was configured against.
	DependsOn []string

	// Fingerprint is the configuration fingerprint the artifact was built
	// under.
	Fingerprint string

	// Cached reports whether the artifact was reused from a previous build.
	Cached bool
}

// ErrStampMissing indicates no valid stamp exists at an install path.
var ErrStampMissing = errors.New("no build stamp")
