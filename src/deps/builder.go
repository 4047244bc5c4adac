package deps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sofmeright/netrig/src/backend"
)

// Builder ensures the native prerequisites of a backend exist under Prefix,
// in strict dependency order. It is single-threaded control logic: each
// toolchain step is an independent child process waited on to completion.
// Concurrent builds into the same prefix must be serialized by the caller.
type Builder struct {
	// Prefix is the installation prefix; each stage installs into
	// Prefix/<stage>.
	Prefix string

	// Pins supplies the frozen upstream versions.
	Pins *Pins

	// PacketLib and Bypass drive the two native stacks.
	PacketLib Toolchain
	Bypass    Toolchain

	// PacketLibDir and BypassDir are the source checkouts, read for
	// revision stamping only.
	PacketLibDir string
	BypassDir    string

	Log *slog.Logger
}

// EnsureBuilt returns the dependency artifacts for spec, building whatever
// is missing. The posix backend has no native dependencies and returns an
// empty sequence without touching the filesystem.
//
// For the kernel-bypass backend the packet library is built first; the
// bypass stack is only attempted after the packet library stage fully
// succeeded, and is configured against its install location. A stage
// failure aborts the sequence with a *BuildError and writes no stamp, so a
// future run cannot trust a half-built artifact.
func (b *Builder) EnsureBuilt(ctx context.Context, spec backend.Spec) ([]Artifact, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Name == backend.Posix {
		return nil, nil
	}

	packetLib, err := b.ensureStage(ctx, spec, b.PacketLib, b.PacketLibDir, Artifact{})
	if err != nil {
		return nil, err
	}

	bypass, err := b.ensureStage(ctx, spec, b.Bypass, b.BypassDir, packetLib)
	if err != nil {
		return nil, err
	}
	bypass.DependsOn = []string{packetLib.ID}

	return []Artifact{packetLib, bypass}, nil
}

// ensureStage builds one stage unless a matching stamp already marks it
// complete. dep is the zero Artifact for the first stage.
func (b *Builder) ensureStage(ctx context.Context, spec backend.Spec, tc Toolchain, srcDir string, dep Artifact) (Artifact, error) {
	stage := tc.ID()
	pin := b.Pins.For(stage)
	installPath := filepath.Join(b.Prefix, stage)

	fp := Fingerprint(stage, spec, pin.Version, SourceRevision(srcDir), dep.Fingerprint)

	if st, err := ReadStamp(installPath); err == nil && st.Fingerprint == fp {
		b.log().Debug("dependency up to date", "stage", stage, "fingerprint", fp[:12])
		return Artifact{
			ID:           stage,
			Version:      st.Version,
			InstallPath:  installPath,
			LibraryPaths: st.LibraryPaths,
			Fingerprint:  fp,
			Cached:       true,
		}, nil
	}

	b.log().Info("building dependency", "stage", stage, "version", pin.Version)

	if err := os.MkdirAll(installPath, 0o755); err != nil {
		return Artifact{}, &BuildError{Stage: stage, Err: fmt.Errorf("creating install dir: %w", err)}
	}

	opt := ConfigureOptions{
		Driver:        spec.Driver,
		Profile:       spec.Profile,
		PacketLibPath: dep.InstallPath,
	}
	if err := tc.Configure(ctx, opt); err != nil {
		return Artifact{}, &BuildError{Stage: stage, Err: fmt.Errorf("configure: %w", err)}
	}
	if err := tc.Build(ctx); err != nil {
		return Artifact{}, &BuildError{Stage: stage, Err: fmt.Errorf("build: %w", err)}
	}
	libPaths, err := tc.Install(ctx, installPath)
	if err != nil {
		return Artifact{}, &BuildError{Stage: stage, Err: fmt.Errorf("install: %w", err)}
	}

	// The stamp is written last: partial builds stay invisible to future runs.
	st := &Stamp{Fingerprint: fp, Version: pin.Version, LibraryPaths: libPaths}
	if err := WriteStamp(installPath, st); err != nil {
		return Artifact{}, &BuildError{Stage: stage, Err: err}
	}

	return Artifact{
		ID:           stage,
		Version:      pin.Version,
		InstallPath:  installPath,
		LibraryPaths: libPaths,
		Fingerprint:  fp,
	}, nil
}

func (b *Builder) log() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}
