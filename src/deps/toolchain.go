package deps

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sofmeright/netrig/src/backend"
)

// ConfigureOptions parameterize a toolchain's configure step.
type ConfigureOptions struct {
	// Driver is the resolved driver variant for the kernel-bypass backend.
	Driver backend.Driver

	// Profile is the build profile.
	Profile backend.Profile

	// PacketLibPath is the install location of the packet-processing
	// library. Set only for the bypass stack, which is configured against it.
	PacketLibPath string
}

// Toolchain drives one external native stack through its
// configure -> build -> install cycle. Each step runs an independent child
// process and blocks until it exits.
type Toolchain interface {
	ID() string
	Configure(ctx context.Context, opt ConfigureOptions) error
	Build(ctx context.Context) error
	Install(ctx context.Context, dest string) ([]string, error)
}

// RunFunc executes one external command in dir, wiring its output to the
// given writers. Injectable so tests can record invocations without
// spawning real build tools.
type RunFunc func(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error

// ExecRun is the production RunFunc.
func ExecRun(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// PacketLibToolchain builds the packet-processing library for a target
// CPU/driver combination.
type PacketLibToolchain struct {
	SourceDir string
	Jobs      int
	Stdout    io.Writer
	Stderr    io.Writer
	Run       RunFunc
}

// NewPacketLibToolchain creates a packet-library toolchain with default
// output writers.
func NewPacketLibToolchain(sourceDir string, jobs int) *PacketLibToolchain {
	return &PacketLibToolchain{
		SourceDir: sourceDir,
		Jobs:      jobs,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Run:       ExecRun,
	}
}

func (t *PacketLibToolchain) ID() string { return StagePacketLib }

// Configure prepares the library build for the target CPU/driver combination.
func (t *PacketLibToolchain) Configure(ctx context.Context, opt ConfigureOptions) error {
	args := []string{
		"config",
		"T=x86_64-native-linux-gcc",
		fmt.Sprintf("DRIVER=%s", opt.Driver),
		fmt.Sprintf("PROFILE=%s", opt.Profile),
	}
	return t.Run(ctx, t.SourceDir, t.Stdout, t.Stderr, "make", args...)
}

// Build compiles the configured library.
func (t *PacketLibToolchain) Build(ctx context.Context) error {
	return t.Run(ctx, t.SourceDir, t.Stdout, t.Stderr, "make", jobsArgs(t.Jobs)...)
}

// Install copies the built artifacts under dest and returns the library
// search paths they contribute.
func (t *PacketLibToolchain) Install(ctx context.Context, dest string) ([]string, error) {
	args := []string{"install", fmt.Sprintf("DESTDIR=%s", dest)}
	if err := t.Run(ctx, t.SourceDir, t.Stdout, t.Stderr, "make", args...); err != nil {
		return nil, err
	}
	return []string{filepath.Join(dest, "lib")}, nil
}

// BypassStackToolchain builds the user-space TCP stack against an installed
// packet-processing library.
type BypassStackToolchain struct {
	SourceDir string
	Jobs      int
	Stdout    io.Writer
	Stderr    io.Writer
	Run       RunFunc
}

// NewBypassStackToolchain creates a bypass-stack toolchain with default
// output writers.
func NewBypassStackToolchain(sourceDir string, jobs int) *BypassStackToolchain {
	return &BypassStackToolchain{
		SourceDir: sourceDir,
		Jobs:      jobs,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Run:       ExecRun,
	}
}

func (t *BypassStackToolchain) ID() string { return StageBypass }

// Configure points the stack's build at the packet library install tree.
func (t *BypassStackToolchain) Configure(ctx context.Context, opt ConfigureOptions) error {
	args := []string{
		fmt.Sprintf("--with-packet-lib=%s", opt.PacketLibPath),
		fmt.Sprintf("--build-profile=%s", opt.Profile),
	}
	return t.Run(ctx, t.SourceDir, t.Stdout, t.Stderr, "./configure", args...)
}

// Build compiles the configured stack.
func (t *BypassStackToolchain) Build(ctx context.Context) error {
	return t.Run(ctx, t.SourceDir, t.Stdout, t.Stderr, "make", jobsArgs(t.Jobs)...)
}

// Install copies the built artifacts under dest and returns the library
// search paths they contribute.
func (t *BypassStackToolchain) Install(ctx context.Context, dest string) ([]string, error) {
	args := []string{"install", fmt.Sprintf("PREFIX=%s", dest)}
	if err := t.Run(ctx, t.SourceDir, t.Stdout, t.Stderr, "make", args...); err != nil {
		return nil, err
	}
	return []string{filepath.Join(dest, "lib")}, nil
}

func jobsArgs(jobs int) []string {
	if jobs > 0 {
		return []string{fmt.Sprintf("-j%d", jobs)}
	}
	return nil
}
