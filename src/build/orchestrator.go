package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/deps"
)

// Orchestrator wraps the library's build tool.
type Orchestrator struct {
	// SourceDir is the root of the networking library source tree.
	SourceDir string

	// Tool is the build tool binary. Defaults to "make".
	Tool string

	// Jobs caps build parallelism; 0 defers to the tool.
	Jobs int

	// ExtraLibPaths are appended after dependency-derived search paths.
	ExtraLibPaths []string

	Stdout io.Writer
	Stderr io.Writer
	Log    *slog.Logger

	// Run is injectable for tests. Defaults to the real build tool.
	Run RunFunc
}

// RunFunc executes the assembled build command and returns its error.
type RunFunc func(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error

// NewOrchestrator creates an Orchestrator with default output writers.
func NewOrchestrator(sourceDir string) *Orchestrator {
	return &Orchestrator{
		SourceDir: sourceDir,
		Tool:      "make",
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Run:       deps.ExecRun,
	}
}

// Build compiles one target for spec against the given dependency
// artifacts. Feature flags are validated before any process is spawned;
// contradictory flag sets are a configuration error, not a build failure.
// A non-zero build tool exit yields Result{Status: failure} with the exit
// code propagated unchanged and a nil error.
func (o *Orchestrator) Build(ctx context.Context, spec backend.Spec, artifacts []deps.Artifact, target Target) (*Result, error) {
	if target != TargetLibrary && target != TargetTests {
		return nil, fmt.Errorf("target %q: %w", target, ErrUnknownTarget)
	}

	engine, err := Get(spec.Name)
	if err != nil {
		return nil, err
	}
	flags, err := engine.FeatureFlags(spec)
	if err != nil {
		return nil, err
	}
	if err := ValidateFlags(flags); err != nil {
		return nil, err
	}

	args := o.buildArgs(spec, artifacts, target, flags)

	o.log().Info("building", "target", target, "backend", spec.String(), "features", strings.Join(flags, ","))

	start := time.Now()
	runErr := o.run()(ctx, o.SourceDir, o.Stdout, o.Stderr, o.tool(), args...)
	result := &Result{
		Target:   target,
		Status:   StatusSuccess,
		Duration: time.Since(start),
	}

	if runErr != nil {
		result.Status = StatusFailure
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// The tool could not be launched at all.
		return nil, fmt.Errorf("running %s: %w", o.tool(), runErr)
	}

	return result, nil
}

// buildArgs assembles the build tool argument list.
func (o *Orchestrator) buildArgs(spec backend.Spec, artifacts []deps.Artifact, target Target, flags []string) []string {
	args := []string{string(target)}

	// Profile and feature flags
	args = append(args, fmt.Sprintf("PROFILE=%s", spec.Profile))
	args = append(args, fmt.Sprintf("FEATURES=%s", strings.Join(flags, ",")))

	// Native search paths, dependency order first, extras appended.
	// All entries are kept; later ones never override earlier ones.
	paths := searchPaths(artifacts, o.ExtraLibPaths)
	if len(paths) > 0 {
		args = append(args, fmt.Sprintf("LIBRARY_PATH=%s", strings.Join(paths, ":")))
	}
	for _, a := range artifacts {
		args = append(args, fmt.Sprintf("%s=%s", prefixVar(a.ID), a.InstallPath))
	}

	// Parallelism
	if o.Jobs > 0 {
		args = append(args, fmt.Sprintf("-j%d", o.Jobs))
	}

	return args
}

// searchPaths concatenates dependency library paths in the order supplied,
// then the configured extras.
func searchPaths(artifacts []deps.Artifact, extra []string) []string {
	var paths []string
	for _, a := range artifacts {
		paths = append(paths, a.LibraryPaths...)
	}
	return append(paths, extra...)
}

// prefixVar maps a stage ID to the build variable naming its install tree,
// e.g. packet-library -> PACKET_LIBRARY_PREFIX.
func prefixVar(id string) string {
	v := strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
	return v + "_PREFIX"
}

func (o *Orchestrator) tool() string {
	if o.Tool != "" {
		return o.Tool
	}
	return "make"
}

func (o *Orchestrator) run() RunFunc {
	if o.Run != nil {
		return o.Run
	}
	return deps.ExecRun
}

func (o *Orchestrator) log() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}
