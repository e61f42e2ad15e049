// Package cmd is the thin cobra CLI wrapper around the core (§6): it loads
// a roster, calls into internal/scorer or internal/optimizer, and prints
// the result. None of the scoring/optimization logic lives here.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meshachvetz/meshachvetz/internal/config"
)

var (
	configPath   string
	overridePath string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "meshachvetz",
	Short: "Assigns students to classrooms to maximize a configurable quality score",
}

// Execute runs the CLI; non-zero exit on validation/scoring error, zero on
// success even when constraints_satisfied is false (§6: that is data, not
// an error).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults used if empty)")
	rootCmd.PersistentFlags().StringVar(&overridePath, "toml-override", "", "Path to an optional .meshachvetz.toml override layered on top of --config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Progress log level: minimal, normal, detailed, debug (overrides config.log_level)")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig builds the effective Config for a command invocation: the
// YAML/TOML file (or defaults), with --log-level overriding config.log_level
// when set.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, overridePath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func fatalf(format string, args ...any) {
	logrus.Fatalf(format, args...)
}
