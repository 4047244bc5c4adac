package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/build"
	"github.com/sofmeright/netrig/src/config"
	"github.com/sofmeright/netrig/src/deps"
)

// resolveSpec runs the backend selector over the loaded configuration.
// Resolution failures are configuration errors and exit before any process
// is spawned.
func resolveSpec(cfg *config.Config) (backend.Spec, error) {
	profile, err := backend.ParseProfile(cfg.Backend.Profile)
	if err != nil {
		return backend.Spec{}, &exitError{code: exitConfig, err: err}
	}
	driver, err := backend.ParseDriver(cfg.Backend.Driver)
	if err != nil {
		return backend.Spec{}, &exitError{code: exitConfig, err: err}
	}

	var probe backend.Probe = backend.SysfsProbe{}
	if cfg.Backend.NICs != "" {
		probe = backend.StaticProbe(splitList(cfg.Backend.NICs))
	}

	spec, err := backend.Resolve(cfg.Backend.Name, driver, profile, probe)
	if err != nil {
		return backend.Spec{}, &exitError{code: exitConfig, err: err}
	}
	return spec, nil
}

// newBuilder assembles the dependency builder from configuration.
func newBuilder(cfg *config.Config) (*deps.Builder, error) {
	pins, err := deps.LoadPins(cfg.Deps.Pins)
	if err != nil {
		return nil, &exitError{code: exitConfig, err: err}
	}
	return &deps.Builder{
		Prefix:       cfg.Deps.Prefix,
		Pins:         pins,
		PacketLib:    deps.NewPacketLibToolchain(cfg.Deps.PacketLib, cfg.Build.Jobs),
		Bypass:       deps.NewBypassStackToolchain(cfg.Deps.Bypass, cfg.Build.Jobs),
		PacketLibDir: cfg.Deps.PacketLib,
		BypassDir:    cfg.Deps.Bypass,
		Log:          logger,
	}, nil
}

// newOrchestrator assembles the build orchestrator from configuration.
func newOrchestrator(cfg *config.Config) *build.Orchestrator {
	o := build.NewOrchestrator(cfg.Build.Source)
	o.Jobs = cfg.Build.Jobs
	o.ExtraLibPaths = splitPaths(cfg.Build.LibPath)
	o.Log = logger
	return o
}

// testBinDir resolves the built test binary root.
func testBinDir(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Test.BinDir) {
		return cfg.Test.BinDir
	}
	return filepath.Join(cfg.Build.Source, cfg.Test.BinDir)
}

// testEnv builds the environment snapshot for a test invocation: MTU/MSS,
// the harness config file, and the native runtime library paths derived
// from the dependency artifacts.
func testEnv(cfg *config.Config, artifacts []deps.Artifact) map[string]string {
	env := map[string]string{
		"MTU": strconv.Itoa(cfg.Test.MTU),
		"MSS": strconv.Itoa(cfg.Test.MSS),
	}
	if cfg.Test.Config != "" {
		env["CONFIG_PATH"] = cfg.Test.Config
	}

	var libs []string
	for _, a := range artifacts {
		libs = append(libs, a.LibraryPaths...)
	}
	libs = append(libs, splitPaths(cfg.Build.LibPath)...)
	if len(libs) > 0 {
		env["LD_LIBRARY_PATH"] = strings.Join(libs, ":")
	}

	return env
}

// artifactDetail renders a one-line artifact description for sections.
func artifactDetail(a deps.Artifact) string {
	state := "built"
	if a.Cached {
		state = "cached"
	}
	return fmt.Sprintf("%s %s (%s) %s", a.ID, a.Version, state, a.InstallPath)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitPaths(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ":") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
