package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/netrig/src/deps"
	"github.com/sofmeright/netrig/src/output"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Build the native dependencies of the resolved backend",
	Long: "Ensures the packet-processing library and the kernel-bypass TCP\n" +
		"stack exist under the install prefix, building in dependency order.\n" +
		"Artifacts with a matching build stamp are reused, not rebuilt.",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := resolveSpec(cfg)
		if err != nil {
			return err
		}
		builder, err := newBuilder(cfg)
		if err != nil {
			return err
		}

		color := output.UseColor()
		start := time.Now()
		artifacts, err := builder.EnsureBuilt(cmd.Context(), spec)

		sec := output.NewSection(os.Stdout, "dependencies "+spec.String(), time.Since(start), color)
		defer sec.Close()

		if err != nil {
			var buildErr *deps.BuildError
			if errors.As(err, &buildErr) {
				sec.Row("%-16s%s  %v", buildErr.Stage, output.StatusIcon("failure", color), buildErr.Err)
				return &exitError{code: exitCodeOf(buildErr.Err), err: err}
			}
			return err
		}

		if len(artifacts) == 0 {
			sec.Row("no native dependencies for backend %s", spec.Name)
			return nil
		}
		for _, a := range artifacts {
			sec.Row("%s  %s", output.StatusIcon("success", color), artifactDetail(a))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

// ensureDeps is shared by the build/test/ci commands: dependency artifacts
// must exist before anything is compiled or run against them.
func ensureDeps(cmd *cobra.Command) ([]deps.Artifact, error) {
	spec, err := resolveSpec(cfg)
	if err != nil {
		return nil, err
	}
	builder, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	artifacts, err := builder.EnsureBuilt(cmd.Context(), spec)
	if err != nil {
		var buildErr *deps.BuildError
		if errors.As(err, &buildErr) {
			return nil, &exitError{
				code: exitCodeOf(buildErr.Err),
				err:  fmt.Errorf("dependency stage failed: %w", err),
			}
		}
		return nil, err
	}
	return artifacts, nil
}
