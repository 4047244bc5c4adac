package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/deps"
	"github.com/sofmeright/netrig/src/output"
	"github.com/sofmeright/netrig/src/testrun"
)

var (
	testName    string
	testRole    string
	testTimeout int
	testReport  string
	failFast    bool
	parallel    int64
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run built network tests",
}

var testRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one test in one peer role",
	Long: "Runs a single test binary as either client or server, bounded by a\n" +
		"wall-clock timeout. Coordinating a client/server pair across hosts is\n" +
		"the caller's responsibility: start the server invocation first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := testrun.ParseRole(pick(testRole, cfg.Test.Role))
		if err != nil {
			return &exitError{code: exitConfig, err: err}
		}

		spec, runner, artifacts, err := testSetup(cmd)
		if err != nil {
			return err
		}

		inv := newInvocation(pick(testName, cfg.Test.Name), role, spec, artifacts)
		result, err := runner.Run(cmd.Context(), inv)
		if err != nil {
			return err
		}
		reportResult(result)
		return resultError(result)
	},
}

var testPairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Run one test as a coordinated server/client pair on this host",
	Long: "Launches the server invocation first, waits the configured readiness\n" +
		"delay, then launches the client. Both outcomes are reported; there is\n" +
		"no rendezvous protocol beyond the delay.",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, runner, artifacts, err := testSetup(cmd)
		if err != nil {
			return err
		}

		name := pick(testName, cfg.Test.Name)
		server := newInvocation(name, testrun.RoleServer, spec, artifacts)
		client := newInvocation(name, testrun.RoleClient, spec, artifacts)

		delay := time.Duration(cfg.Test.Delay) * time.Millisecond
		pr, err := testrun.RunPair(cmd.Context(), runner, server, client, delay)
		if err != nil {
			return err
		}
		reportResult(pr.Server)
		reportResult(pr.Client)

		// The server was started first; its failure wins the exit code.
		if err := resultError(pr.Server); err != nil {
			return err
		}
		return resultError(pr.Client)
	},
}

var testBatchCmd = &cobra.Command{
	Use:   "batch [test-name ...]",
	Short: "Run several independent test invocations, collecting failures",
	Long: "Runs each named test in the configured peer role. Failures and\n" +
		"timeouts are collected per invocation and do not abort the batch\n" +
		"unless --fail-fast is set. Invocations run sequentially unless\n" +
		"--parallel raises the limit.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := testrun.ParseRole(pick(testRole, cfg.Test.Role))
		if err != nil {
			return &exitError{code: exitConfig, err: err}
		}

		spec, runner, artifacts, err := testSetup(cmd)
		if err != nil {
			return err
		}

		invs := make([]testrun.Invocation, len(args))
		for i, name := range args {
			invs[i] = newInvocation(name, role, spec, artifacts)
		}

		start := time.Now()
		results, err := testrun.RunBatch(cmd.Context(), runner, invs, parallel, failFast)
		for _, res := range results {
			reportResult(res)
		}
		if err != nil {
			return err
		}

		if testReport != "" {
			if err := output.WriteTestJUnit(testReport, string(spec.Name), results, time.Since(start)); err != nil {
				return err
			}
		}

		status := "success"
		if testrun.Failed(results) > 0 {
			status = "failure"
		}
		output.SummaryTotal(os.Stdout, time.Since(start), status, output.UseColor())

		for _, res := range results {
			if err := resultError(res); err != nil {
				return err // first failing invocation's code
			}
		}
		return nil
	},
}

func init() {
	testCmd.PersistentFlags().StringVar(&testName, "name", "", "test name (default from config)")
	testCmd.PersistentFlags().StringVar(&testRole, "role", "", "peer role: client or server (default from config)")
	testCmd.PersistentFlags().IntVar(&testTimeout, "timeout", 0, "timeout in seconds (default from config)")
	testBatchCmd.Flags().StringVar(&testReport, "report", "", "write a JUnit XML report into this directory")
	testBatchCmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing test")
	testBatchCmd.Flags().Int64Var(&parallel, "parallel", 1, "maximum concurrent invocations")

	testCmd.AddCommand(testRunCmd)
	testCmd.AddCommand(testPairCmd)
	testCmd.AddCommand(testBatchCmd)
	rootCmd.AddCommand(testCmd)
}

// testSetup resolves the backend, ensures dependency artifacts exist, and
// returns the configured runner.
func testSetup(cmd *cobra.Command) (backend.Spec, *testrun.Runner, []deps.Artifact, error) {
	spec, err := resolveSpec(cfg)
	if err != nil {
		return backend.Spec{}, nil, nil, err
	}
	artifacts, err := ensureDeps(cmd)
	if err != nil {
		return backend.Spec{}, nil, nil, err
	}
	runner := &testrun.Runner{BinDir: testBinDir(cfg), Log: logger}
	return spec, runner, artifacts, nil
}

// newInvocation builds one invocation from resolved configuration.
func newInvocation(name string, role testrun.Role, spec backend.Spec, artifacts []deps.Artifact) testrun.Invocation {
	timeout := cfg.Test.Timeout
	if testTimeout > 0 {
		timeout = testTimeout
	}
	return testrun.Invocation{
		TestName: name,
		Backend:  spec,
		Role:     role,
		Timeout:  time.Duration(timeout) * time.Second,
		Env:      testEnv(cfg, artifacts),
	}
}

// reportResult prints one invocation outcome with its captured output.
func reportResult(res *testrun.Result) {
	detail := fmt.Sprintf("exit %d", res.ExitCode)
	if res.Status == testrun.StatusTimedOut {
		detail = "deadline exceeded"
	}
	output.PhaseResult(os.Stdout, fmt.Sprintf("%s/%s", res.TestName, res.Role),
		string(res.Status), detail, res.Duration)
	if !res.Passed() && len(res.Stderr) > 0 {
		os.Stdout.Write(res.Stderr)
	}
}

// resultError maps a non-passing result to the harness exit code: the test
// binary's own code for failures, the timeout code for deadline kills.
func resultError(res *testrun.Result) error {
	switch res.Status {
	case testrun.StatusSuccess:
		return nil
	case testrun.StatusTimedOut:
		return &exitError{
			code: exitTimeout,
			err:  fmt.Errorf("test %s (%s) timed out", res.TestName, res.Role),
		}
	default:
		code := res.ExitCode
		if code <= 0 {
			code = 1
		}
		return &exitError{
			code: code,
			err:  fmt.Errorf("test %s (%s) failed with exit %d", res.TestName, res.Role, res.ExitCode),
		}
	}
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
