package build

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/deps"
)

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		want  error
	}{
		{"posix alone", []string{"posix"}, nil},
		{"bypass with driver", []string{"kernel-bypass", "mlx5"}, nil},
		{"both drivers", []string{"kernel-bypass", "mlx4", "mlx5"}, ErrConflictingDrivers},
		{"both backends", []string{"posix", "kernel-bypass"}, ErrConflictingBackends},
		{"unknown flag", []string{"posix", "turbo"}, ErrUnknownFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlags(tt.flags)
			if tt.want == nil {
				if err != nil {
					t.Errorf("validate: %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("validate: %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEngineFeatureFlags(t *testing.T) {
	posix, err := Get(backend.Posix)
	if err != nil {
		t.Fatalf("get posix engine: %v", err)
	}
	flags, err := posix.FeatureFlags(backend.Spec{Name: backend.Posix, Profile: backend.ProfileRelease})
	if err != nil {
		t.Fatalf("posix flags: %v", err)
	}
	if len(flags) != 1 || flags[0] != "posix" {
		t.Errorf("posix flags = %v", flags)
	}

	bypass, err := Get(backend.KernelBypass)
	if err != nil {
		t.Fatalf("get bypass engine: %v", err)
	}
	flags, err = bypass.FeatureFlags(backend.Spec{
		Name:    backend.KernelBypass,
		Driver:  backend.DriverMLX4,
		Profile: backend.ProfileDebug,
	})
	if err != nil {
		t.Fatalf("bypass flags: %v", err)
	}
	if len(flags) != 2 || flags[0] != "kernel-bypass" || flags[1] != "mlx4" {
		t.Errorf("bypass flags = %v", flags)
	}
}

// recordingRun captures the assembled command instead of executing it.
type recordingRun struct {
	called bool
	name   string
	args   []string
	err    error
}

func (r *recordingRun) run(_ context.Context, _ string, _, _ io.Writer, name string, args ...string) error {
	r.called = true
	r.name = name
	r.args = args
	return r.err
}

func testOrchestrator(rec *recordingRun) *Orchestrator {
	return &Orchestrator{
		SourceDir: "/src/netlib",
		Tool:      "make",
		Jobs:      4,
		Stdout:    io.Discard,
		Stderr:    io.Discard,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Run:       rec.run,
	}
}

func TestBuildRejectsInvalidSpecBeforeSpawn(t *testing.T) {
	rec := &recordingRun{}
	o := testOrchestrator(rec)

	// Kernel-bypass without a driver variant cannot produce a flag set.
	spec := backend.Spec{Name: backend.KernelBypass, Profile: backend.ProfileRelease}
	if _, err := o.Build(context.Background(), spec, nil, TargetLibrary); err == nil {
		t.Fatal("invalid spec accepted")
	}
	if rec.called {
		t.Error("build tool spawned despite configuration error")
	}
}

func TestBuildRejectsUnknownTarget(t *testing.T) {
	rec := &recordingRun{}
	o := testOrchestrator(rec)

	spec := backend.Spec{Name: backend.Posix, Profile: backend.ProfileRelease}
	_, err := o.Build(context.Background(), spec, nil, Target("docs"))
	if !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("err = %v, want ErrUnknownTarget", err)
	}
	if rec.called {
		t.Error("build tool spawned despite unknown target")
	}
}

func TestBuildArgsAssembly(t *testing.T) {
	rec := &recordingRun{}
	o := testOrchestrator(rec)
	o.ExtraLibPaths = []string{"/opt/extra/lib"}

	spec := backend.Spec{
		Name:    backend.KernelBypass,
		Driver:  backend.DriverMLX5,
		Profile: backend.ProfileRelease,
	}
	artifacts := []deps.Artifact{
		{ID: "packet-library", InstallPath: "/prefix/packet-library", LibraryPaths: []string{"/prefix/packet-library/lib"}},
		{ID: "bypass-stack", InstallPath: "/prefix/bypass-stack", LibraryPaths: []string{"/prefix/bypass-stack/lib"}},
	}

	res, err := o.Build(context.Background(), spec, artifacts, TargetTests)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Errorf("status = %s, want success", res.Status)
	}
	if rec.name != "make" {
		t.Errorf("tool = %q, want make", rec.name)
	}

	args := strings.Join(rec.args, " ")
	for _, want := range []string{
		"tests",
		"PROFILE=release",
		"FEATURES=kernel-bypass,mlx5",
		"LIBRARY_PATH=/prefix/packet-library/lib:/prefix/bypass-stack/lib:/opt/extra/lib",
		"PACKET_LIBRARY_PREFIX=/prefix/packet-library",
		"BYPASS_STACK_PREFIX=/prefix/bypass-stack",
		"-j4",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if rec.args[0] != "tests" {
		t.Errorf("first arg = %q, want the target", rec.args[0])
	}
}

func TestBuildFailureExitCode(t *testing.T) {
	// A real child process supplies the *exec.ExitError the orchestrator
	// propagates; the recorded args are ignored.
	o := testOrchestrator(&recordingRun{})
	o.Run = func(ctx context.Context, _ string, _, _ io.Writer, _ string, _ ...string) error {
		return exec.CommandContext(ctx, "/bin/sh", "-c", "exit 3").Run()
	}

	spec := backend.Spec{Name: backend.Posix, Profile: backend.ProfileRelease}
	res, err := o.Build(context.Background(), spec, nil, TargetLibrary)
	if err != nil {
		t.Fatalf("build returned hard error for compiler failure: %v", err)
	}
	if res.Status != StatusFailure {
		t.Errorf("status = %s, want failure", res.Status)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestBuildSpawnFailureIsHardError(t *testing.T) {
	o := testOrchestrator(&recordingRun{})
	o.Tool = "/no/such/build-tool"
	o.Run = deps.ExecRun

	spec := backend.Spec{Name: backend.Posix, Profile: backend.ProfileRelease}
	if _, err := o.Build(context.Background(), spec, nil, TargetLibrary); err == nil {
		t.Error("unlaunchable tool reported as build failure instead of error")
	}
}
