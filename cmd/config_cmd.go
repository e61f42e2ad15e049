package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meshachvetz/meshachvetz/internal/config"
)

// configCmd is the parent for the config show|status|reset trio, mirroring
// the teacher's convertCmd parent/subcommand tree (cmd/convert.go).
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatalf("config error: %v", err)
			return
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fatalf("marshaling config: %v", err)
			return
		}
		fmt.Print(string(data))
	},
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the effective configuration passes validation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Printf("invalid: %v\n", err)
			return
		}
		fmt.Printf("valid: algorithm=%s log_level=%s\n", cfg.Optimizer.Algorithm, cfg.LogLevel)
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Print the built-in default configuration as YAML, ignoring --config",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := yaml.Marshal(config.Default())
		if err != nil {
			fatalf("marshaling default config: %v", err)
			return
		}
		fmt.Print(string(data))
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configStatusCmd)
	configCmd.AddCommand(configResetCmd)
}
