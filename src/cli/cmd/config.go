package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the fully resolved configuration as YAML",
	Long: "Prints the configuration after layering defaults, the config file,\n" +
		"and NETRIG_* environment overrides — exactly what every stage sees.",
	RunE: func(cmd *cobra.Command, args []string) error {
		view := map[string]any{
			"backend": map[string]any{
				"name":    cfg.Backend.Name,
				"driver":  cfg.Backend.Driver,
				"profile": cfg.Backend.Profile,
				"nics":    cfg.Backend.NICs,
			},
			"deps": map[string]any{
				"prefix":    cfg.Deps.Prefix,
				"pins":      cfg.Deps.Pins,
				"packetlib": cfg.Deps.PacketLib,
				"bypass":    cfg.Deps.Bypass,
			},
			"build": map[string]any{
				"source":  cfg.Build.Source,
				"libpath": cfg.Build.LibPath,
				"jobs":    cfg.Build.Jobs,
			},
			"test": map[string]any{
				"name":    cfg.Test.Name,
				"role":    cfg.Test.Role,
				"timeout": cfg.Test.Timeout,
				"mtu":     cfg.Test.MTU,
				"mss":     cfg.Test.MSS,
				"bindir":  cfg.Test.BinDir,
				"delay":   cfg.Test.Delay,
				"config":  cfg.Test.Config,
			},
			"log": map[string]any{
				"level":  cfg.Log.Level,
				"format": cfg.Log.Format,
			},
		}

		data, err := yaml.Marshal(view)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
