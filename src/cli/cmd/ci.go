package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/output"
	"github.com/sofmeright/netrig/src/testrun"
)

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "Run the full pipeline: resolve, deps, build, test pair",
	Long: "Chains every stage for the resolved backend: dependency builds,\n" +
		"library and test compilation, then the configured test as a\n" +
		"server/client pair. Stops at the first failing stage; the exit code\n" +
		"is that stage's.",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		color := output.UseColor()

		spec, err := resolveSpec(cfg)
		if err != nil {
			return err
		}

		driver := string(spec.Driver)
		if spec.Name == backend.Posix {
			driver = "-"
		}
		output.ContextBlock(os.Stdout, []output.KV{
			{Key: "backend", Value: string(spec.Name)},
			{Key: "driver", Value: driver},
			{Key: "profile", Value: string(spec.Profile)},
			{Key: "test", Value: cfg.Test.Name},
		})

		depsStart := time.Now()
		artifacts, err := ensureDeps(cmd)
		if err != nil {
			return err
		}
		detail := "no native dependencies"
		if len(artifacts) > 0 {
			detail = artifactDetail(artifacts[len(artifacts)-1])
		}
		output.PhaseResult(os.Stdout, "deps", "success", detail, time.Since(depsStart))

		if err := buildTargets(cmd, newOrchestrator(cfg), spec, artifacts); err != nil {
			return err
		}

		runner := &testrun.Runner{BinDir: testBinDir(cfg), Log: logger}
		server := newInvocation(cfg.Test.Name, testrun.RoleServer, spec, artifacts)
		client := newInvocation(cfg.Test.Name, testrun.RoleClient, spec, artifacts)
		delay := time.Duration(cfg.Test.Delay) * time.Millisecond

		pr, err := testrun.RunPair(cmd.Context(), runner, server, client, delay)
		if err != nil {
			return err
		}
		reportResult(pr.Server)
		reportResult(pr.Client)

		status := "success"
		if !pr.Passed() {
			status = "failure"
		}
		output.SummaryTotal(os.Stdout, time.Since(start), status, color)

		if err := resultError(pr.Server); err != nil {
			return err
		}
		return resultError(pr.Client)
	},
}

func init() {
	rootCmd.AddCommand(ciCmd)
}
