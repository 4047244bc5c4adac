package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/netrig/src/backend"
	"github.com/sofmeright/netrig/src/output"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the target backend and driver variant",
	Long: "Resolves which backend to compile from configuration: an explicit\n" +
		"choice wins outright; otherwise the NIC hardware is probed for the\n" +
		"driver variant.",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
