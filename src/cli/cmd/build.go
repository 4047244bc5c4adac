package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/build"
	"github.com/sofmeright/netrig/src/deps"
	"github.com/sofmeright/netrig/src/output"
)

var buildTarget string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the library and test binaries for the resolved backend",
	Long: "Compiles the networking library (and optionally its test binaries)\n" +
		"against the installed dependency artifacts. The library always builds\n" +
		"before the tests; a library failure stops the pipeline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var targets []build.Target
		switch buildTarget {
		case "all":
			targets = []build.Target{build.TargetLibrary, build.TargetTests}
		default:
			t, err := build.ParseTarget(buildTarget)
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			targets = []build.Target{t}
		}

		spec, err := resolveSpec(cfg)
		if err != nil {
			return err
		}
		artifacts, err := ensureDeps(cmd)
		if err != nil {
			return err
		}
		orch := newOrchestrator(cfg)

		_ = output.UseColor()
		for _, target := range targets {
			id := "build_" + string(target)
			output.SectionStart(os.Stdout, id, "build "+string(target))
			result, err := orch.Build(cmd.Context(), spec, artifacts, target)
			output.SectionEnd(os.Stdout, id)
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}

			output.PhaseResult(os.Stdout, string(target), string(result.Status),
				spec.String(), result.Duration)

			if result.Status != build.StatusSuccess {
				return &exitError{
					code: result.ExitCode,
					err:  fmt.Errorf("building %s for %s: exit %d", target, spec, result.ExitCode),
				}
			}
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildTarget, "target", "all", "build target: library, tests, or all")
	rootCmd.AddCommand(buildCmd)
}

// buildTargets compiles library then tests, reporting each phase. Shared
// with the ci command.
func buildTargets(cmd *cobra.Command, orch *build.Orchestrator, spec backend.Spec, artifacts []deps.Artifact) error {
	for _, target := range []build.Target{build.TargetLibrary, build.TargetTests} {
		start := time.Now()
		result, err := orch.Build(cmd.Context(), spec, artifacts, target)
		if err != nil {
			return &exitError{code: exitConfig, err: err}
		}
		output.PhaseResult(os.Stdout, string(target), string(result.Status), spec.String(), time.Since(start))
		if result.Status != build.StatusSuccess {
			return &exitError{
				code: result.ExitCode,
				err:  fmt.Errorf("building %s for %s: exit %d", target, spec, result.ExitCode),
			}
		}
	}
	return nil
}
